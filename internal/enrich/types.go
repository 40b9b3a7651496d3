// Package enrich defines the core types and interfaces for the tournament
// web-enrichment pipeline: jobs, extracted candidate facts, and the contracts
// between the scheduler, crawler, and stores.
package enrich

import "time"

// JobStatus represents the lifecycle state of an enrichment job.
type JobStatus string

// Job status values persisted in the job store.
const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

// IsTerminal reports whether a job in this status will never transition again.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// Job represents one scheduled attempt to crawl and enrich a single
// tournament's site. At most one job per tournament may be queued or running
// at a time; enqueue is idempotent against that invariant.
type Job struct {
	ID           string     `json:"id"`
	TournamentID string     `json:"tournament_id"`
	Status       JobStatus  `json:"status"`
	AttemptCount int        `json:"attempt_count"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	PagesFetched int        `json:"pages_fetched"`
	LastError    string     `json:"last_error,omitempty"`
}

// ContactRole classifies who a contact candidate appears to be.
type ContactRole string

// Contact roles, most specific first. Empty means unknown.
const (
	RoleTD       ContactRole = "TD"
	RoleAssignor ContactRole = "ASSIGNOR"
	RoleGeneral  ContactRole = "GENERAL"
)

// ContactCandidate is an extracted person reachable by email or phone.
type ContactCandidate struct {
	ID           string      `json:"id"`
	TournamentID string      `json:"tournament_id"`
	Role         ContactRole `json:"role,omitempty"`
	Name         string      `json:"name,omitempty"`
	Email        string      `json:"email,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	SourceURL    string      `json:"source_url"`
	Evidence     string      `json:"evidence_text"`
	Confidence   float64     `json:"confidence"`
}

// VenueCandidate is an extracted playing location.
type VenueCandidate struct {
	ID           string  `json:"id"`
	TournamentID string  `json:"tournament_id"`
	VenueName    string  `json:"venue_name,omitempty"`
	AddressText  string  `json:"address_text,omitempty"`
	VenueURL     string  `json:"venue_url,omitempty"`
	SourceURL    string  `json:"source_url"`
	Evidence     string  `json:"evidence_text"`
	Confidence   float64 `json:"confidence"`
}

// RateUnit classifies how a referee compensation amount is paid out.
type RateUnit string

// Rate units recognized by the extractor. Empty means unknown.
const (
	RatePerGame RateUnit = "per_game"
	RatePerDay  RateUnit = "per_day"
	RatePerHour RateUnit = "per_hour"
	RateFlat    RateUnit = "flat"
)

// CompCandidate is an extracted referee compensation fact.
type CompCandidate struct {
	ID              string   `json:"id"`
	TournamentID    string   `json:"tournament_id"`
	RateText        string   `json:"rate_text"`
	RateAmountMin   float64  `json:"rate_amount_min,omitempty"`
	RateAmountMax   float64  `json:"rate_amount_max,omitempty"`
	RateUnit        RateUnit `json:"rate_unit,omitempty"`
	DivisionContext string   `json:"division_context,omitempty"`
	TravelLodging   string   `json:"travel_lodging,omitempty"`
	TravelText      string   `json:"travel_housing_text,omitempty"`
	Platforms       []string `json:"assigning_platforms,omitempty"`
	SourceURL       string   `json:"source_url"`
	Evidence        string   `json:"evidence_text"`
	Confidence      float64  `json:"confidence"`
}

// DateCandidate is an extracted event or deadline date. StartDate and EndDate
// are ISO dates (YYYY-MM-DD); EndDate is empty for single dates.
type DateCandidate struct {
	ID           string  `json:"id"`
	TournamentID string  `json:"tournament_id"`
	DateText     string  `json:"date_text"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date,omitempty"`
	SourceURL    string  `json:"source_url"`
	Evidence     string  `json:"evidence_text"`
	Confidence   float64 `json:"confidence"`
}

// AttributeKey is the closed vocabulary for free-text attribute facts.
type AttributeKey string

// Attribute keys the extractor recognizes.
const (
	AttrCashAtField           AttributeKey = "cash_at_field"
	AttrRefereeFood           AttributeKey = "referee_food"
	AttrFacilities            AttributeKey = "facilities"
	AttrRefereeTents          AttributeKey = "referee_tents"
	AttrTravelLodging         AttributeKey = "travel_lodging"
	AttrRefGameSchedule       AttributeKey = "ref_game_schedule"
	AttrRefParking            AttributeKey = "ref_parking"
	AttrRefParkingCost        AttributeKey = "ref_parking_cost"
	AttrMentors               AttributeKey = "mentors"
	AttrAssignedAppropriately AttributeKey = "assigned_appropriately"
)

// AttributeCandidate is a keyword-triggered free-text fact.
type AttributeCandidate struct {
	ID           string       `json:"id"`
	TournamentID string       `json:"tournament_id"`
	Key          AttributeKey `json:"attribute_key"`
	Value        string       `json:"attribute_value"`
	SourceURL    string       `json:"source_url"`
	Evidence     string       `json:"evidence_text"`
	Confidence   float64      `json:"confidence"`
}

// PDFHint flags an unscraped PDF link worth manual follow-up.
type PDFHint struct {
	URL        string  `json:"url"`
	LinkText   string  `json:"link_text"`
	SourceURL  string  `json:"source_url"`
	Confidence float64 `json:"confidence"`
}

// PageResult holds everything extracted from a single fetched page. It is
// ephemeral: the crawl orchestrator owns it during one job and discards it
// after flushing candidates to the store.
type PageResult struct {
	Contacts   []ContactCandidate
	Venues     []VenueCandidate
	Comps      []CompCandidate
	Dates      []DateCandidate
	Attributes []AttributeCandidate
	PDFHints   []PDFHint
}

// CrawlSummary is the union of facts found across all pages visited for one job.
type CrawlSummary struct {
	PagesFetched int
	Contacts     []ContactCandidate
	Venues       []VenueCandidate
	Comps        []CompCandidate
	Dates        []DateCandidate
	Attributes   []AttributeCandidate
}

// Page is one successfully fetched HTML document.
type Page struct {
	URL        string
	HTML       string
	StatusCode int
}

// CandidateKind discriminates candidate rows across store tables.
type CandidateKind string

// Candidate kinds.
const (
	KindContact   CandidateKind = "contact"
	KindVenue     CandidateKind = "venue"
	KindComp      CandidateKind = "comp"
	KindDate      CandidateKind = "date"
	KindAttribute CandidateKind = "attribute"
)

// PendingCandidates is the review-pending candidate set for one tournament.
type PendingCandidates struct {
	Contacts   []ContactCandidate
	Venues     []VenueCandidate
	Comps      []CompCandidate
	Dates      []DateCandidate
	Attributes []AttributeCandidate
}

// ReviewGroup merges raw candidates of the same kind and normalized signature
// into one reviewable item. It is a pure aggregation over live candidate rows
// and is always recomputed, never persisted.
type ReviewGroup struct {
	TournamentID string        `json:"tournament_id"`
	Kind         CandidateKind `json:"kind"`
	Signature    string        `json:"signature"`
	Label        string        `json:"label"`
	Detail       string        `json:"detail,omitempty"`
	CandidateIDs []string      `json:"candidate_ids"`
	Confidence   float64       `json:"confidence"`
	SourceURL    string        `json:"source_url"`
}

// Tournament is the canonical record enrichment merges into.
type Tournament struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	SourceURL       string            `json:"source_url"`
	DirectorName    string            `json:"director_name,omitempty"`
	DirectorEmail   string            `json:"director_email,omitempty"`
	DirectorPhone   string            `json:"director_phone,omitempty"`
	RefContactName  string            `json:"ref_contact_name,omitempty"`
	RefContactEmail string            `json:"ref_contact_email,omitempty"`
	RefContactPhone string            `json:"ref_contact_phone,omitempty"`
	VenueName       string            `json:"venue_name,omitempty"`
	VenueAddress    string            `json:"venue_address,omitempty"`
	VenueURL        string            `json:"venue_url,omitempty"`
	StartDate       string            `json:"start_date,omitempty"`
	EndDate         string            `json:"end_date,omitempty"`
	CompNotes       string            `json:"comp_notes,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
}
