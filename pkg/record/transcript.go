package record

import "strings"

// Transcript is one entry of the GSvar "coding_and_splicing" column:
// gene:transcript:type:impact:exon:cDNA:protein[:...]
type Transcript struct {
	Gene   string
	ID     string
	Type   string
	Impact string
}

// Types splits combined consequence types like "splice_region_variant&intron_variant".
func (t Transcript) Types() []string {
	return strings.Split(t.Type, "&")
}

func ParseTranscripts(text string) []Transcript {
	var transcripts []Transcript
	for _, entry := range strings.Split(text, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		for len(parts) < 4 {
			parts = append(parts, "")
		}
		transcripts = append(transcripts, Transcript{Gene: parts[0], ID: parts[1], Type: parts[2], Impact: parts[3]})
	}
	return transcripts
}
