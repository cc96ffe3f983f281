package health

// healthResponse is the body of the health side channel. Timestamp is
// Unix milliseconds to match the relay protocol; Time is RFC3339 for
// humans.
type healthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Time      string `json:"time"`
	Uptime    string `json:"uptime"`
}
