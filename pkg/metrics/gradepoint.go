package metrics

import "time"

// Result labels shared by the parse and GPA counters.
const (
	ResultOK = "ok"
)

// Service bundles the metrics every gradepoint entry point reports.
type Service struct {
	reg *Registry

	CoursesParsed *Counter
	ParseDuration *Histogram
	InFlight      *Gauge
}

// NewService registers the service metrics on reg.
func NewService(reg *Registry) *Service {
	return &Service{
		reg:           reg,
		CoursesParsed: reg.Counter("gradepoint_courses_parsed_total", "Course records returned by successful parses."),
		ParseDuration: reg.Histogram("gradepoint_parse_duration_seconds", "Wall time of one transcript parse.", nil),
		InFlight:      reg.Gauge("gradepoint_parses_in_flight", "Parses currently running."),
	}
}

// Registry is the registry the metrics live in.
func (s *Service) Registry() *Registry { return s.reg }

// ObserveParse records one parse run. result is ResultOK or the failure
// kind.
func (s *Service) ObserveParse(result string, courses int, started time.Time) {
	s.reg.Counter(WithLabels("gradepoint_parse_total", "result", result), "Transcript parses by outcome.").Inc()
	s.ParseDuration.Since(started)
	if result == ResultOK {
		s.CoursesParsed.Add(int64(courses))
	}
}

// ObserveGPA records one GPA calculation.
func (s *Service) ObserveGPA(result string) {
	s.reg.Counter(WithLabels("gradepoint_gpa_requests_total", "result", result), "GPA calculations by outcome.").Inc()
}
