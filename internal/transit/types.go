package transit

// MonitorResponse from GET ?stopId={id}.
//
// Every level of the nesting is optional in practice: the upstream omits
// fields freely, so all descent happens through nil-tolerant accessors in
// the parser rather than assuming the happy path.
type MonitorResponse struct {
	Data *MonitorData `json:"data"`
}

// MonitorData wraps the monitor list.
type MonitorData struct {
	Monitors []Monitor `json:"monitors"`
}

// Monitor is one physical stop location with its lines.
type Monitor struct {
	LocationStop *LocationStop `json:"locationStop"`
	Lines        []Line        `json:"lines"`
}

// LocationStop describes the monitored stop.
type LocationStop struct {
	Properties *StopProperties `json:"properties"`
}

// StopProperties carries the stop display attributes.
type StopProperties struct {
	Title string `json:"title"`
}

// Line is one service line at a monitor.
type Line struct {
	Name       string         `json:"name"`
	Towards    string         `json:"towards"`
	Departures *DepartureList `json:"departures"`
}

// DepartureList wraps the departure array.
type DepartureList struct {
	Departure []UpstreamDeparture `json:"departure"`
}

// UpstreamDeparture is one raw departure record.
type UpstreamDeparture struct {
	DepartureTime *DepartureTime `json:"departureTime"`
	Platform      *Platform      `json:"platform"`
}

// DepartureTime carries the countdown and the planned/realtime pair whose
// divergence marks a departure as realtime-tracked.
type DepartureTime struct {
	Countdown   *int   `json:"countdown"`
	TimePlanned string `json:"timePlanned"`
	TimeReal    string `json:"timeReal"`
}

// Platform is the optional platform label.
type Platform struct {
	Text string `json:"text"`
}
