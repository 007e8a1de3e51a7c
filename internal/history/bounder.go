// Package history bounds conversation history before model invocation.
package history

import (
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// MaxTurns is the window forwarded to the model: the most recent turns
// of the conversation.
const MaxTurns = 6

// Bound returns at most MaxTurns of the most recent entries, order
// preserved. Entries with roles outside {user, assistant} are dropped
// before windowing. The result is always a contiguous suffix of the
// filtered history. Pure, no I/O.
func Bound(history []models.Turn) []models.Turn {
	filtered := make([]models.Turn, 0, len(history))
	for _, turn := range history {
		if turn.Role == models.RoleUser || turn.Role == models.RoleAssistant {
			filtered = append(filtered, turn)
		}
	}

	if len(filtered) > MaxTurns {
		filtered = filtered[len(filtered)-MaxTurns:]
	}
	return filtered
}
