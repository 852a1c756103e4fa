package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eugenenazirov/seating-planner/internal/roster"
	"github.com/eugenenazirov/seating-planner/internal/seating"
	"github.com/eugenenazirov/seating-planner/internal/storage"
)

var errInvalidPayload = errors.New("invalid arrangement payload")

type arrangementInput struct {
	people        []seating.Person
	seatsPerTable *int
	diversify     *bool
	seed          *uint64
}

// decodeArrangementRequest accepts either a JSON body or a multipart upload
// carrying a roster file.
func decodeArrangementRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (arrangementInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return decodeMultipart(r, maxBytes)
	}
	return decodeJSON(r)
}

func decodeJSON(r *http.Request) (arrangementInput, error) {
	var req arrangementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return arrangementInput{}, err
		}
		return arrangementInput{}, fmt.Errorf("%w: unable to parse JSON payload", errInvalidPayload)
	}

	people := make([]seating.Person, len(req.People))
	for i, p := range req.People {
		people[i] = seating.Person{
			Name:       strings.TrimSpace(p.Name),
			Department: strings.TrimSpace(p.Department),
		}
	}

	return arrangementInput{
		people:        people,
		seatsPerTable: req.SeatsPerTable,
		diversify:     req.Diversify,
		seed:          req.Seed,
	}, nil
}

func decodeMultipart(r *http.Request, maxBytes int64) (arrangementInput, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return arrangementInput{}, maxErr
		}
		return arrangementInput{}, fmt.Errorf("%w: unable to parse multipart form", errInvalidPayload)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return arrangementInput{}, fmt.Errorf("%w: missing roster file field %q", errInvalidPayload, "file")
	}
	defer file.Close()

	format, err := roster.FormatFromFilename(header.Filename)
	if err != nil {
		return arrangementInput{}, err
	}
	people, err := roster.Parse(file, format)
	if err != nil {
		return arrangementInput{}, err
	}

	in := arrangementInput{people: people}

	if raw := strings.TrimSpace(r.FormValue("seatsPerTable")); raw != "" {
		seats, err := strconv.Atoi(raw)
		if err != nil {
			return arrangementInput{}, fmt.Errorf("%w: seatsPerTable must be an integer", errInvalidPayload)
		}
		in.seatsPerTable = &seats
	}
	if raw := strings.TrimSpace(r.FormValue("diversify")); raw != "" {
		diversify, err := parseFormBool(raw)
		if err != nil {
			return arrangementInput{}, fmt.Errorf("%w: diversify must be a boolean", errInvalidPayload)
		}
		in.diversify = &diversify
	}
	if raw := strings.TrimSpace(r.FormValue("seed")); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return arrangementInput{}, fmt.Errorf("%w: seed must be a non-negative integer", errInvalidPayload)
		}
		in.seed = &seed
	}

	return in, nil
}

// parseFormBool also accepts "on", which browsers submit for checked boxes.
func parseFormBool(raw string) (bool, error) {
	if strings.EqualFold(raw, "on") {
		return true, nil
	}
	return strconv.ParseBool(raw)
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		h.metrics.ObserveArrangementFailure("payload_too_large")
		writeError(w, http.StatusRequestEntityTooLarge, "Payload too large",
			fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
	case errors.Is(err, roster.ErrUnsupportedFormat),
		errors.Is(err, roster.ErrMissingColumns),
		errors.Is(err, roster.ErrEmptyRoster):
		h.metrics.ObserveArrangementFailure("invalid_roster")
		writeError(w, http.StatusBadRequest, "Invalid roster", err.Error(),
			"Upload a .csv or .xlsx file with First Name, Last Name and Department columns")
	case errors.Is(err, errInvalidPayload):
		h.metrics.ObserveArrangementFailure("invalid_payload")
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		h.metrics.ObserveArrangementFailure("invalid_roster")
		writeError(w, http.StatusBadRequest, "Invalid roster", err.Error())
	}
}

type personPayload struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

type arrangementRequest struct {
	People        []personPayload `json:"people"`
	SeatsPerTable *int            `json:"seatsPerTable"`
	Diversify     *bool           `json:"diversify"`
	Seed          *uint64         `json:"seed"`
}

type settingsRequest struct {
	SeatsPerTable *int  `json:"seatsPerTable"`
	Diversify     *bool `json:"diversify"`
}

type settingsResponse struct {
	SeatsPerTable int       `json:"seatsPerTable"`
	Diversify     bool      `json:"diversify"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Message       string    `json:"message,omitempty"`
}

type tablePayload struct {
	Number   int             `json:"number"`
	Capacity int             `json:"capacity"`
	People   []personPayload `json:"people"`
}

type arrangementResponse struct {
	ID                  string         `json:"id"`
	CreatedAt           time.Time      `json:"createdAt"`
	SeatsPerTable       int            `json:"seatsPerTable"`
	Diversify           bool           `json:"diversify"`
	Seed                *uint64        `json:"seed,omitempty"`
	TotalPeople         int            `json:"totalPeople"`
	SameDepartmentPairs int            `json:"sameDepartmentPairs"`
	Tables              []tablePayload `json:"tables"`
	CalculationTimeMs   int64          `json:"calculationTimeMs"`
}

func newArrangementResponse(record storage.Record) arrangementResponse {
	tables := make([]tablePayload, len(record.Arrangement.Tables))
	for i, table := range record.Arrangement.Tables {
		people := make([]personPayload, len(table.People))
		for j, p := range table.People {
			people[j] = personPayload{Name: p.Name, Department: p.Department}
		}
		tables[i] = tablePayload{
			Number:   table.Number,
			Capacity: table.Capacity,
			People:   people,
		}
	}

	return arrangementResponse{
		ID:                  record.ID,
		CreatedAt:           record.CreatedAt,
		SeatsPerTable:       record.SeatsPerTable,
		Diversify:           record.Diversify,
		Seed:                record.Seed,
		TotalPeople:         record.Arrangement.TotalSeated(),
		SameDepartmentPairs: record.Arrangement.SameDepartmentPairs(),
		Tables:              tables,
	}
}
