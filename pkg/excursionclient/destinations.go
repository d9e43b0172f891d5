package excursionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"tripscout/pkg/logger"

	"github.com/tidwall/gjson"
)

type destinationEntry struct {
	name string
	id   int64
}

// destinationTable maps common destination names to Viator destination ids.
// Source: Viator Partner API documentation. Kept as an ordered slice: the
// substring fallback takes the first match, so scan order is the precedence.
var destinationTable = []destinationEntry{
	// North America - Major Cities
	{"san francisco", 1139},
	{"new york", 685},
	{"new york city", 685},
	{"nyc", 685},
	{"las vegas", 684},
	{"los angeles", 688},
	{"orlando", 689},
	{"miami", 690},
	{"chicago", 691},
	{"washington", 692},
	{"washington dc", 692},
	{"boston", 693},
	{"seattle", 694},
	{"usa", 684},
	{"united states", 684},

	// Europe
	{"paris", 479},
	{"london", 502},
	{"rome", 490},
	{"barcelona", 4900},
	{"amsterdam", 525},
	{"berlin", 4919},
	{"prague", 4918},
	{"vienna", 4917},
	{"venice", 490},
	{"madrid", 4900},
	{"france", 479},
	{"uk", 502},
	{"england", 502},
	{"italy", 490},
	{"spain", 4900},
	{"germany", 4919},

	// Asia
	{"tokyo", 526},
	{"bangkok", 5085},
	{"singapore", 5085},
	{"hong kong", 5085},
	{"dubai", 5085},
	{"bali", 5085},
	{"japan", 526},
	{"thailand", 5085},

	// Australia & Pacific
	{"sydney", 627},
	{"melbourne", 627},
	{"australia", 627},

	// South America
	{"rio", 5751},
	{"brazil", 5751},

	// Other
	{"mexico", 684},
	{"canada", 684},
}

// lookupDestination resolves a destination name against the static table.
// Exact match wins, then substring match in either direction, first entry in
// table order.
func lookupDestination(name string) (int64, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return 0, false
	}

	for _, entry := range destinationTable {
		if entry.name == normalized {
			return entry.id, true
		}
	}

	for _, entry := range destinationTable {
		if strings.Contains(normalized, entry.name) || strings.Contains(entry.name, normalized) {
			return entry.id, true
		}
	}

	return 0, false
}

// resolveDestination maps a free-text destination to a Viator destination id:
// static table first, then one taxonomy lookup call. Every lookup failure
// collapses to not-found, the caller decides whether that is fatal.
func (v *ViatorClient) resolveDestination(ctx context.Context, name string) (int64, bool) {
	if id, ok := lookupDestination(name); ok {
		return id, true
	}

	body, err := json.Marshal(map[string]string{"searchTerm": name})
	if err != nil {
		return 0, false
	}

	url := fmt.Sprintf("%s/taxonomy/destinations", v.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		v.logger.Error("viator: failed to build destination lookup request", logger.Field{Key: "err", Value: err})
		return 0, false
	}
	v.setHeaders(req)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn("viator: destination lookup failed",
			logger.Field{Key: "destination", Value: name},
			logger.Field{Key: "err", Value: err},
		)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("viator: destination lookup returned non-200",
			logger.Field{Key: "destination", Value: name},
			logger.Field{Key: "status", Value: resp.StatusCode},
		)
		return 0, false
	}

	raw, err := readBody(resp)
	if err != nil {
		return 0, false
	}

	root := gjson.ParseBytes(raw)
	candidates := firstArray(root, "destinations", "data")
	if len(candidates) == 0 {
		return 0, false
	}

	id := firstNumber(candidates[0], "destinationId", "id")
	if id == 0 {
		return 0, false
	}

	v.logger.Info("viator: resolved destination via taxonomy lookup",
		logger.Field{Key: "destination", Value: name},
		logger.Field{Key: "destination_id", Value: id},
	)
	return id, true
}
