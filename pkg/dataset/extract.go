package dataset

import (
	"encoding/json"
	"fmt"

	"seo-cluster/pkg/api"
)

// ExtractURLs returns the URLs of the first n result items that carry one,
// in rank order. n <= 0 returns every URL.
func ExtractURLs(raw []byte, n int) ([]string, error) {
	result, err := firstResult(raw)
	if err != nil || result == nil {
		return nil, err
	}

	var serp api.SERPResult
	if err := json.Unmarshal(result, &serp); err != nil {
		return nil, fmt.Errorf("failed to decode serp result: %w", err)
	}

	urls := make([]string, 0, len(serp.Items))
	for _, item := range serp.Items {
		if item.URL == "" {
			continue
		}
		urls = append(urls, item.URL)
		if n > 0 && len(urls) == n {
			break
		}
	}
	return urls, nil
}

// ExtractVolume reads search_volume and cpc from a volume envelope.
func ExtractVolume(raw []byte) (volume *int64, cpc *float64, err error) {
	result, err := firstResult(raw)
	if err != nil || result == nil {
		return nil, nil, err
	}
	var item api.VolumeItem
	if err := json.Unmarshal(result, &item); err != nil {
		return nil, nil, fmt.Errorf("failed to decode volume result: %w", err)
	}
	return item.SearchVolume, item.CPC, nil
}

// ExtractDifficulty reads items[0].keyword_difficulty.
func ExtractDifficulty(raw []byte) (*float64, error) {
	var items []api.DifficultyItem
	if err := labsItems(raw, &items); err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0].KeywordDifficulty, nil
}

// ExtractIntent reads items[0].keyword_intent.label, "" when absent.
func ExtractIntent(raw []byte) (string, error) {
	var items []api.IntentItem
	if err := labsItems(raw, &items); err != nil || len(items) == 0 {
		return "", err
	}
	if items[0].KeywordIntent == nil {
		return "", nil
	}
	return items[0].KeywordIntent.Label, nil
}

func firstResult(raw []byte) (json.RawMessage, error) {
	env, err := api.ParseEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	result := env.FirstResult()
	if len(result) == 0 || string(result) == "null" {
		return nil, nil
	}
	return result, nil
}

func labsItems(raw []byte, dest interface{}) error {
	result, err := firstResult(raw)
	if err != nil || result == nil {
		return err
	}
	var labs api.LabsResult
	if err := json.Unmarshal(result, &labs); err != nil {
		return fmt.Errorf("failed to decode labs result: %w", err)
	}
	if len(labs.Items) == 0 || string(labs.Items) == "null" {
		return nil
	}
	return json.Unmarshal(labs.Items, dest)
}
