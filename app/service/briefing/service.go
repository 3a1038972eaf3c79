// Package briefing composes the daily briefing message: weather, today's
// reminders, and news headlines.
package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"haru/app/client/ddg"
	"haru/app/client/openmeteo"
	"haru/app/store"

	"github.com/samber/do"
)

const (
	newsQuery      = "오늘 주요 뉴스 한국"
	maxNewsResults = 5
)

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "일요일",
	time.Monday:    "월요일",
	time.Tuesday:   "화요일",
	time.Wednesday: "수요일",
	time.Thursday:  "목요일",
	time.Friday:    "금요일",
	time.Saturday:  "토요일",
}

// WeatherSource and NewsSource are the two external feeds a briefing pulls
// from; both are best effort.
type WeatherSource interface {
	Current(ctx context.Context, city string) (*openmeteo.Weather, error)
}

type NewsSource interface {
	Search(ctx context.Context, query string, maxResults int) ([]ddg.Result, error)
}

type Service struct {
	store   *store.Store
	weather WeatherSource
	news    NewsSource
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		store:   do.MustInvoke[*store.Store](di),
		weather: do.MustInvoke[*openmeteo.Client](di),
		news:    do.MustInvoke[*ddg.Client](di),
	}, nil
}

// Generate renders the briefing for one conversation. A failing section
// degrades to a notice line instead of failing the whole briefing.
func (s *Service) Generate(ctx context.Context, conversationID, city string) string {
	now := time.Now()

	var b strings.Builder

	fmt.Fprintf(&b, "☀️ 일일 브리핑 - %s %s\n\n",
		now.Format("2006년 01월 02일"), weekdayNames[now.Weekday()])

	s.writeWeather(ctx, &b, city)
	s.writeReminders(ctx, &b, conversationID, now)
	s.writeNews(ctx, &b)

	b.WriteString("💡 좋은 하루 되세요!")

	return b.String()
}

func (s *Service) writeWeather(ctx context.Context, b *strings.Builder, city string) {
	w, err := s.weather.Current(ctx, city)
	if err != nil {
		slog.Warn("Briefing weather fetch failed", "city", city, "error", err)
		b.WriteString("🌤️ 날씨: 정보를 가져올 수 없습니다.\n\n")
		return
	}

	fmt.Fprintf(b, "🌤️ 날씨\n%s - %s\n", w.City, w.Description)
	fmt.Fprintf(b, "🌡️ 기온: %.1f°C (체감 %.1f°C)\n", w.Temp, w.FeelsLike)
	fmt.Fprintf(b, "📊 최저/최고: %.1f°C / %.1f°C\n", w.TempMin, w.TempMax)
	fmt.Fprintf(b, "☔ 강수확률: %d%%\n", w.RainChance)
	fmt.Fprintf(b, "💧 습도: %d%%\n\n", w.Humidity)
}

func (s *Service) writeReminders(ctx context.Context, b *strings.Builder, conversationID string, now time.Time) {
	reminders, err := s.store.ListReminders(ctx, conversationID)
	if err != nil {
		slog.Warn("Briefing reminder fetch failed", "error", err)
		b.WriteString("📅 오늘의 리마인더: 정보를 가져올 수 없습니다.\n\n")
		return
	}

	b.WriteString("📅 오늘의 리마인더\n")

	today := now.Format("2006-01-02")
	count := 0
	for _, r := range reminders {
		local := r.RemindAt.Local()
		if local.Format("2006-01-02") != today {
			continue
		}
		fmt.Fprintf(b, "- %s | %s\n", local.Format("15:04"), r.Content)
		count++
	}

	if count == 0 {
		b.WriteString("오늘 예정된 리마인더가 없습니다.\n")
	}
	b.WriteString("\n")
}

func (s *Service) writeNews(ctx context.Context, b *strings.Builder) {
	results, err := s.news.Search(ctx, newsQuery, maxNewsResults)
	if err != nil || len(results) == 0 {
		if err != nil {
			slog.Warn("Briefing news fetch failed", "error", err)
		}
		b.WriteString("📰 주요 뉴스: 정보를 가져올 수 없습니다.\n\n")
		return
	}

	b.WriteString("📰 주요 뉴스\n")
	for i, r := range results {
		fmt.Fprintf(b, "%d. %s\n", i+1, r.Title)
	}
	b.WriteString("\n")
}
