// Package server exposes the ingestion pipeline over HTTP. Webhook and
// manual endpoints drive single jobs and report failures with non-2xx
// statuses; the batch "pending" and backfill endpoints always answer 200
// with per-job results so one bad transcript never fails a sweep.
package server
