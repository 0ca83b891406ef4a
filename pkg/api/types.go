package api

import (
	"encoding/json"
)

// StatusOK is the DataForSEO status code for a successful request or task.
const StatusOK = 20000

// Target identifies the search context of a request.
type Target struct {
	LocationCode int    `json:"location_code" yaml:"location_code" mapstructure:"location_code"`
	LanguageCode string `json:"language_code" yaml:"language_code" mapstructure:"language_code"`
	Device       string `json:"device" yaml:"device" mapstructure:"device"`
}

// Envelope is the common DataForSEO response wrapper.
type Envelope struct {
	Version       string  `json:"version,omitempty"`
	StatusCode    int     `json:"status_code"`
	StatusMessage string  `json:"status_message"`
	Time          string  `json:"time,omitempty"`
	Cost          float64 `json:"cost,omitempty"`
	TasksCount    int     `json:"tasks_count,omitempty"`
	TasksError    int     `json:"tasks_error,omitempty"`
	Tasks         []Task  `json:"tasks"`
}

type Task struct {
	ID            string            `json:"id"`
	StatusCode    int               `json:"status_code"`
	StatusMessage string            `json:"status_message"`
	Data          json.RawMessage   `json:"data,omitempty"`
	Result        []json.RawMessage `json:"result"`
}

// Task status codes for work that has been accepted but has no result yet.
const (
	StatusTaskCreated = 20100
	StatusTaskHanded  = 40601
	StatusTaskInQueue = 40602
)

// InProgress reports whether the task is still being processed.
func (t Task) InProgress() bool {
	switch t.StatusCode {
	case StatusTaskCreated, StatusTaskHanded, StatusTaskInQueue:
		return true
	}
	return false
}

// Failed reports a task level error that will not resolve by polling.
func (t Task) Failed() bool {
	return t.StatusCode >= 40000 && !t.InProgress()
}

// Ready reports whether the first task carries a non-empty result.
func (e *Envelope) Ready() bool {
	return e != nil && len(e.Tasks) > 0 && len(e.Tasks[0].Result) > 0
}

// FirstResult returns tasks[0].result[0], or nil.
func (e *Envelope) FirstResult() json.RawMessage {
	if !e.Ready() {
		return nil
	}
	return e.Tasks[0].Result[0]
}

// TaskIDs returns the id of every task in order. Tasks rejected at post
// time (status outside 2xxxx) yield "".
func (e *Envelope) TaskIDs() []string {
	ids := make([]string, len(e.Tasks))
	for i, t := range e.Tasks {
		if t.StatusCode == 0 || (t.StatusCode >= 20000 && t.StatusCode < 30000) {
			ids[i] = t.ID
		}
	}
	return ids
}

// Response pairs the decoded envelope with the exact bytes received, which
// is what gets cached.
type Response struct {
	Envelope
	Raw []byte
}

// ParseEnvelope decodes raw JSON into an Envelope.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// SERPResult is tasks[].result[] of the organic SERP endpoints.
type SERPResult struct {
	Keyword string     `json:"keyword"`
	Items   []SERPItem `json:"items"`
}

type SERPItem struct {
	Type         string `json:"type"`
	RankGroup    int    `json:"rank_group"`
	RankAbsolute int    `json:"rank_absolute"`
	Domain       string `json:"domain"`
	Title        string `json:"title"`
	URL          string `json:"url"`
}

// VolumeItem is one result of the search volume task.
type VolumeItem struct {
	Keyword      string   `json:"keyword"`
	SearchVolume *int64   `json:"search_volume"`
	CPC          *float64 `json:"cpc"`
	Competition  *string  `json:"competition"`
}

// LabsResult is the result wrapper of the Labs live endpoints.
type LabsResult struct {
	ItemsCount int             `json:"items_count"`
	Items      json.RawMessage `json:"items"`
}

type DifficultyItem struct {
	Keyword           string   `json:"keyword"`
	KeywordDifficulty *float64 `json:"keyword_difficulty"`
}

type IntentItem struct {
	Keyword       string `json:"keyword"`
	KeywordIntent *struct {
		Label       string  `json:"label"`
		Probability float64 `json:"probability"`
	} `json:"keyword_intent"`
}
