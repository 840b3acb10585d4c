// Package netcheck performs a lightweight reachability check before the
// large download is attempted. It distinguishes "no network" (fail fast)
// from "server-side failure" (left to the downloader's retry loop).
package netcheck
