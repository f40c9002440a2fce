// Package campaign runs discount campaigns over uploaded customer tables.
//
// A Pipeline is the pure engine composition (classify, then price, then
// summarize). The Service wraps it with TTL-bounded sessions so the dashboard
// can upload a file, preview it, process it and download the result in
// separate requests. Sessions hold interactive state only and expire.
//
// Repository implementations live in repository/memory/ and repository/redis/.
package campaign
