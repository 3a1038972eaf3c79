package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"haru/app/client/exchange"
)

type ExchangeTool struct {
	client *exchange.Client
}

func (t *ExchangeTool) Name() string {
	return "EXCHANGE"
}

func (t *ExchangeTool) Description() string {
	return `- Exchange: When the user asks about currency exchange rates, output [EXCHANGE:amount,FROM,TO] (e.g. [EXCHANGE:100,USD,KRW], [EXCHANGE:1,JPY,KRW])
  - amount: the numeric amount to convert (default 1 if not specified)
  - FROM/TO: 3-letter currency codes (e.g. USD, KRW, JPY, EUR, GBP, CNY)`
}

func (t *ExchangeTool) UsageRules() string {
	return `- For exchange, extract the amount and currency codes. If the user says "달러" assume USD, "엔" assume JPY, "원" assume KRW, "유로" assume EUR, "위안" assume CNY, "파운드" assume GBP.`
}

func (t *ExchangeTool) Handle(ctx context.Context, arg string, _ *Context) (string, error) {
	amount, from, to, err := parseExchangeArg(arg)
	if err != nil {
		return "", err
	}

	rate, err := t.client.Rate(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("failed to get exchange rate for %s → %s: %w", from, to, err)
	}

	return fmt.Sprintf(`Exchange rate result:
- %.2f %s (%s) = %.2f %s (%s)
- Rate: 1 %s = %.4f %s`,
		amount, from, currencyName(from), amount*rate, to, currencyName(to),
		from, rate, to), nil
}

// parseExchangeArg accepts "amount,FROM,TO" as well as space-separated
// fields; two bare currency codes imply amount 1.
func parseExchangeArg(arg string) (float64, string, string, error) {
	fields := strings.FieldsFunc(arg, func(r rune) bool {
		return r == ',' || r == ' '
	})

	switch len(fields) {
	case 3:
		amount, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			amount = 1
		}
		return amount, strings.ToUpper(fields[1]), strings.ToUpper(fields[2]), nil

	case 2:
		if _, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return 0, "", "", fmt.Errorf("missing target currency in %q, expected amount,FROM,TO", arg)
		}
		return 1, strings.ToUpper(fields[0]), strings.ToUpper(fields[1]), nil

	default:
		return 0, "", "", fmt.Errorf("cannot parse exchange request %q, expected amount,FROM,TO", arg)
	}
}

func currencyName(code string) string {
	if name, ok := exchange.CurrencyNames[code]; ok {
		return name
	}
	return code
}
