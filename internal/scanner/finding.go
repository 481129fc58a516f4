package scanner

// Finding records an endpoint that did not behave as missing. Immutable
// once created; ownership passes to the orchestrator's result set.
type Finding struct {
	Candidate     string // the wordlist entry that produced this finding
	Endpoint      string // fully resolved URL
	StatusCode    int
	ContentLength int64
	Body          any // decoded JSON payload, nil when the body is not JSON
}

// ProbeResult is the tagged outcome of one probe as collected by the
// orchestrator. Finding is nil when the endpoint is classified absent.
type ProbeResult struct {
	Candidate string
	Finding   *Finding
	Err       error // unexpected local error; logged, never fatal to the scan
}
