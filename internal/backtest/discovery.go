package backtest

// discovery.go — descubrimiento y filtrado del grupo de contratos de un día.
//
// El servicio de búsqueda de Gamma no hace fuzzy matching, así que el recall
// se cubre lanzando varias variantes de query (frase del topic, alias de la
// ciudad, frase mes/día) y deduplicando por id. Después se filtra con
// predicados duros y se ordena por umbral parseado.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/polyweather/internal/domain"
	"github.com/alejandrodnm/polyweather/internal/ports"
)

const (
	searchStatus = "all"
	searchLimit  = 500
	topicPhrase  = "highest temperature"
)

// cityAliases mapea nombres de ciudad a su alias conocido y viceversa.
var cityAliases = map[string]string{
	"NYC":           "New York",
	"New York":      "NYC",
	"LA":            "Los Angeles",
	"Los Angeles":   "LA",
	"SF":            "San Francisco",
	"San Francisco": "SF",
}

// discoverMarkets devuelve el grupo deduplicado, filtrado y ordenado de
// contratos para (ciudad, fecha). Un resultado vacío significa "día sin
// mercados relevantes" y no es un error; los errores del servicio de
// búsqueda sí se propagan.
func discoverMarkets(ctx context.Context, provider ports.MarketProvider, city string, date time.Time) ([]domain.Market, error) {
	alias := cityAliases[city]
	dateStr := date.Format("2006-01-02")

	queries := searchQueries(city, alias, date)
	merged, err := searchAndMerge(ctx, provider, queries)
	if err != nil {
		return nil, err
	}

	relevant := filterRelevant(merged, city, alias, date)

	// Retry con el alias a secas si el filtrado no dejó nada.
	if len(relevant) == 0 && alias != "" && alias != city {
		slog.Debug("no relevant markets, retrying with alias", "city", city, "alias", alias, "date", dateStr)
		retry, err := searchAndMerge(ctx, provider, []string{
			fmt.Sprintf("Highest temperature in %s", alias),
		})
		if err != nil {
			return nil, err
		}
		relevant = filterRelevant(retry, city, alias, date)
	}

	sortByThreshold(relevant)

	slog.Debug("market discovery complete",
		"city", city,
		"date", dateStr,
		"queries", len(queries),
		"merged", len(merged),
		"relevant", len(relevant),
	)
	return relevant, nil
}

// searchQueries construye las variantes de búsqueda para maximizar recall.
func searchQueries(city, alias string, date time.Time) []string {
	monthDay := fmt.Sprintf("%s %d", date.Month().String(), date.Day())
	queries := []string{
		fmt.Sprintf("Highest temperature in %s", city),
		fmt.Sprintf("%s %s weather", monthDay, city),
		fmt.Sprintf("weather %s", city),
	}
	if alias != "" && alias != city {
		queries = append(queries, fmt.Sprintf("highest temperature %s", alias))
	}
	return queries
}

// searchAndMerge lanza una búsqueda por variante y fusiona los resultados
// deduplicando por id de contrato (gana la primera aparición).
func searchAndMerge(ctx context.Context, provider ports.MarketProvider, queries []string) ([]domain.Market, error) {
	seen := make(map[string]struct{})
	var merged []domain.Market

	for _, q := range queries {
		results, err := provider.Search(ctx, q, searchStatus, searchLimit)
		if err != nil {
			return nil, fmt.Errorf("discovery: search %q: %w", q, err)
		}
		for _, m := range results {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			merged = append(merged, m)
		}
	}
	return merged, nil
}

// filterRelevant aplica los predicados duros: ciudad/alias en la pregunta,
// frase mes-día (completa o abreviada), topic literal, y año de resolución
// (prefiriendo el año de EndDate y cayendo al de creación).
func filterRelevant(markets []domain.Market, city, alias string, date time.Time) []domain.Market {
	monthDayFull := fmt.Sprintf("%s %d", date.Month().String(), date.Day())
	monthDayAbbrev := fmt.Sprintf("%s %d", date.Format("Jan"), date.Day())

	var relevant []domain.Market
	for _, m := range markets {
		q := strings.ToLower(m.Question)

		if !strings.Contains(q, strings.ToLower(city)) &&
			(alias == "" || !strings.Contains(q, strings.ToLower(alias))) {
			continue
		}
		if !strings.Contains(q, strings.ToLower(monthDayFull)) &&
			!strings.Contains(q, strings.ToLower(monthDayAbbrev)) {
			continue
		}
		if !strings.Contains(q, topicPhrase) {
			continue
		}
		if m.ResolutionYear() != date.Year() {
			continue
		}
		relevant = append(relevant, m)
	}
	return relevant
}

// sortByThreshold ordena ascendente por umbral parseado. Los buckets
// abiertos llevan un empujón de ±0.1 para quedar adyacentes, pero
// distinguibles, de los buckets discretos con el mismo umbral numérico.
func sortByThreshold(markets []domain.Market) {
	sort.SliceStable(markets, func(i, j int) bool {
		return sortKey(markets[i].Question) < sortKey(markets[j].Question)
	})
}

func sortKey(question string) float64 {
	key := domain.ParseThreshold(question).Value
	switch domain.ClassifyQualifier(question) {
	case domain.QualifierAbove:
		key += 0.1
	case domain.QualifierBelow:
		key -= 0.1
	}
	return key
}
