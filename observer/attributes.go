package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for ingestion and retrieval spans and metrics.
var (
	AttrEmbedProvider   = attribute.Key("embed.provider")
	AttrEmbedTextCount  = attribute.Key("embed.text_count")
	AttrEmbedDimensions = attribute.Key("embed.dimensions")

	AttrAccountID  = attribute.Key("account.id")
	AttrDocumentID = attribute.Key("document.id")
	AttrChunkCount = attribute.Key("document.chunk_count")

	AttrSearchTopK       = attribute.Key("search.top_k")
	AttrSearchResults    = attribute.Key("search.results")
	AttrSearchRestaurant = attribute.Key("search.restaurant")
)
