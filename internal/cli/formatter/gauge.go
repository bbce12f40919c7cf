package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tremor/internal/domain"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// IndexGauge renders a 0-100 tremor index as [████░░░░]  45, colored by
// the status it classifies to.
func IndexGauge(index int, status domain.TremorStatus, width int) string {
	index = min(max(index, 0), 100)
	if width < 2 {
		width = 2
	}

	filled := index * width / 100
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %3d", SeverityStyle(status).Render(bar), index)
}
