package app

import "github.com/alexanderramin/tremor/internal/domain"

// ReportRequest selects sessions for an external report renderer and says
// which sections it wants. SessionIDs, when set, take precedence over Filters.
type ReportRequest struct {
	SessionIDs        []string
	Filters           domain.HistoryFilters
	IncludeStatistics bool
	IncludeCharts     bool
	IncludeRawData    bool
	PatientName       string
	DoctorName        string
}

// NewReportRequest returns a request with statistics and charts on and raw
// readings off.
func NewReportRequest() ReportRequest {
	return ReportRequest{
		IncludeStatistics: true,
		IncludeCharts:     true,
	}
}

// ReportSession is one session as handed to the renderer. Readings holds the
// full series only when raw data was requested; Chart holds the decimated
// series when charts were requested.
type ReportSession struct {
	domain.Session
	Chart []domain.Reading `json:"chart,omitempty"`
}

// ReportBundle is everything the renderer receives. The core never renders.
type ReportBundle struct {
	GeneratedAt int64                     `json:"generatedAt"`
	PatientName string                    `json:"patientName,omitempty"`
	DoctorName  string                    `json:"doctorName,omitempty"`
	Sessions    []ReportSession           `json:"sessions"`
	Statistics  *domain.SessionStatistics `json:"statistics,omitempty"`
}
