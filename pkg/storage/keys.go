package storage

import (
	"fmt"
	"strconv"

	"github.com/projectdiscovery/fasttemplate"
)

type Kind string

const (
	KindSERP       Kind = "serp"
	KindVolume     Kind = "volume"
	KindDifficulty Kind = "kd"
	KindIntent     Kind = "intent"
)

// DefaultKeyTemplates match the layout of existing cache databases.
var DefaultKeyTemplates = map[Kind]string{
	KindSERP:       "serp|{{keyword}}|{{location_code}}|{{language_code}}|{{device}}",
	KindVolume:     "volume|{{keyword}}|{{location_code}}|{{language_code}}",
	KindDifficulty: "kd|{{keyword}}|{{location_code}}|{{language_code}}",
	KindIntent:     "intent|{{keyword}}|{{location_code}}|{{language_code}}",
}

// Scope is the search context a response was fetched for.
type Scope struct {
	LocationCode int
	LanguageCode string
	Device       string
}

// KeyBuilder renders cache keys from templates.
type KeyBuilder struct {
	templates map[Kind]string
}

// NewKeyBuilder uses DefaultKeyTemplates for any kind missing in overrides.
func NewKeyBuilder(overrides map[Kind]string) (*KeyBuilder, error) {
	templates := make(map[Kind]string, len(DefaultKeyTemplates))
	for k, v := range DefaultKeyTemplates {
		templates[k] = v
	}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		if _, err := fasttemplate.NewTemplate(v, "{{", "}}"); err != nil {
			return nil, fmt.Errorf("invalid %s key template %q: %w", k, v, err)
		}
		templates[k] = v
	}
	return &KeyBuilder{templates: templates}, nil
}

// DefaultKeyBuilder renders DefaultKeyTemplates.
func DefaultKeyBuilder() *KeyBuilder {
	kb, _ := NewKeyBuilder(nil)
	return kb
}

func (kb *KeyBuilder) Key(kind Kind, keyword string, scope Scope) string {
	tpl, ok := kb.templates[kind]
	if !ok {
		tpl = fmt.Sprintf("%s|{{keyword}}|{{location_code}}|{{language_code}}", kind)
	}
	return fasttemplate.ExecuteStringStd(tpl, "{{", "}}", map[string]interface{}{
		"keyword":       keyword,
		"location_code": strconv.Itoa(scope.LocationCode),
		"language_code": scope.LanguageCode,
		"device":        scope.Device,
		"kind":          string(kind),
	})
}
