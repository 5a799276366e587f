package ingest

// Strategy selects the chunking strategy for a document. The choice is made
// at ingestion-configuration time; the only runtime dispatch is one switch
// over this value.
type Strategy int

const (
	// StrategyAuto picks per content type: CSV files use row batching,
	// PDFs use heading-aware hierarchy, everything else sliding windows.
	StrategyAuto Strategy = iota

	// StrategyWindow emits fixed-width overlapping token windows.
	StrategyWindow

	// StrategyHierarchical detects chapter/appendix structure and packs
	// paragraphs per section, keeping stat blocks and tables atomic.
	StrategyHierarchical

	// StrategyCSV batches CSV rows and repeats the header per chunk.
	StrategyCSV

	// StrategyEntity splits at heading lines naming a registered entity
	// and emits one chunk per entity section.
	StrategyEntity
)

// splitter materializes the strategy, resolving StrategyAuto by content type.
func (ing *Ingestor) splitter(s Strategy, ct ContentType) Splitter {
	if s == StrategyAuto {
		switch ct {
		case TypeCSV:
			s = StrategyCSV
		case TypePDF:
			s = StrategyHierarchical
		default:
			s = StrategyWindow
		}
	}
	switch s {
	case StrategyHierarchical:
		return ing.hierarchical
	case StrategyCSV:
		return ing.csv
	case StrategyEntity:
		return ing.entity
	default:
		return ing.window
	}
}
