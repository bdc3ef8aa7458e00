package movies

import (
	"fmt"
	"strings"

	"github.com/onnwee/moviebot/omdb"
)

// Per-field placeholders shown when the provider had no value.
const (
	placeholderUnknown = "Неизвестно"
	placeholderRating  = "Нет рейтинга"
	placeholderPlot    = "Описание отсутствует"
	placeholderAwards  = "Нет наград"
)

func orElse(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}

// Format renders a record as the user-facing reply text (Telegram Markdown).
// Missing fields render as fixed placeholders; the IMDb link is always emitted,
// even for an empty id. Deterministic for a fixed record.
func Format(rec omdb.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎬 *%s* (%s)\n\n", orElse(rec.Title, placeholderUnknown), orElse(rec.Year, placeholderUnknown))
	fmt.Fprintf(&b, "🎭 Жанр: %s\n", orElse(rec.Genre, placeholderUnknown))
	fmt.Fprintf(&b, "🎥 Режиссёр: %s\n", orElse(rec.Director, placeholderUnknown))
	fmt.Fprintf(&b, "👥 Актёры: %s\n", orElse(rec.Actors, placeholderUnknown))
	fmt.Fprintf(&b, "⏱ Продолжительность: %s\n", orElse(rec.Runtime, placeholderUnknown))
	fmt.Fprintf(&b, "📊 Рейтинг IMDb: %s\n", orElse(rec.Rating, placeholderRating))
	fmt.Fprintf(&b, "🏆 Награды: %s\n\n", orElse(rec.Awards, placeholderAwards))
	fmt.Fprintf(&b, "📜 Сюжет: %s\n\n", orElse(rec.Plot, placeholderPlot))
	fmt.Fprintf(&b, "🔗 [Ссылка на IMDb](%s)", rec.IMDBLink())
	return b.String()
}
