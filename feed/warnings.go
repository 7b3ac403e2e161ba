package feed

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/feedformatter/mapping"
)

const maxExamples = 3

// warningInfo holds aggregated information about a specific warning type
type warningInfo struct {
	count    int
	examples []string
}

// WarningAggregator collects degradations during formatting and outputs
// consolidated summaries. It is not safe for concurrent use; create one per call.
type WarningAggregator struct {
	warnings map[string]*warningInfo
}

// NewWarningAggregator creates a new warning aggregator
func NewWarningAggregator() *WarningAggregator {
	return &WarningAggregator{
		warnings: make(map[string]*warningInfo),
	}
}

// Add records a warning occurrence with an example ID
func (w *WarningAggregator) Add(warningType, exampleID string) {
	info := w.warnings[warningType]
	if info == nil {
		info = &warningInfo{examples: make([]string, 0, maxExamples)}
		w.warnings[warningType] = info
	}
	info.count++
	if len(info.examples) < maxExamples {
		info.examples = append(info.examples, exampleID)
	}
}

// Count returns how often warningType was recorded.
func (w *WarningAggregator) Count(warningType string) int {
	if info := w.warnings[warningType]; info != nil {
		return info.count
	}
	return 0
}

// Counts returns a snapshot of every recorded warning type and its count.
func (w *WarningAggregator) Counts() map[string]int {
	out := make(map[string]int, len(w.warnings))
	for k, info := range w.warnings {
		out[k] = info.count
	}
	return out
}

// Examples returns up to three example IDs recorded for warningType.
func (w *WarningAggregator) Examples(warningType string) []string {
	if info := w.warnings[warningType]; info != nil {
		return append([]string(nil), info.examples...)
	}
	return nil
}

// LogAll writes one warn event per recorded warning type, in type order.
func (w *WarningAggregator) LogAll(logger zerolog.Logger, feedName string) {
	types := make([]string, 0, len(w.warnings))
	for t := range w.warnings {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		info := w.warnings[t]
		description, action := describeWarning(t)
		logger.Warn().
			Str("feed", feedName).
			Str("warning", t).
			Int("count", info.count).
			Str("examples", strings.Join(info.examples, ", ")).
			Msgf("%s. %s", description, action)
	}
}

func describeWarning(warningType string) (description, action string) {
	switch warningType {
	case mapping.WarningDroppedValue:
		return "fields whose value could not be represented in the format",
			"Omitting the element"
	case mapping.WarningUnmappedKey:
		return "input keys no mapping accepts",
			"Ignoring the key"
	case mapping.WarningInvalidName:
		return "structured-value keys that are not valid XML names",
			"Skipping the key"
	case WarningNoAbout:
		return "RSS 1.0 channel or items without a link",
			"Omitting rdf:about and resource attributes"
	default:
		return "unknown issue", "Continuing with fallback behavior"
	}
}
