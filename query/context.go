package query

import (
	"strings"

	"github.com/poiesic/recall/vectorstore"
)

// NoRelevantDocs is the context placeholder used when retrieval finds
// nothing above the threshold. The generation prompt tells the model to
// admit ignorance when it sees this.
const NoRelevantDocs = "No relevant docs"

// BuildContext assembles retrieved matches into the context block fed to
// the chat model. Matches are already ordered; their texts are joined
// with blank lines.
func BuildContext(matches []vectorstore.Match) string {
	if len(matches) == 0 {
		return NoRelevantDocs
	}

	texts := make([]string, len(matches))
	for i, match := range matches {
		texts[i] = match.Text
	}
	return strings.Join(texts, "\n\n")
}
