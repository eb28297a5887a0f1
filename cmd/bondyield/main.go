package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/meenmo/ratelib/bond"
	"github.com/meenmo/ratelib/bond/config"
	"github.com/meenmo/ratelib/calendar"
	"github.com/meenmo/ratelib/curve"
	"github.com/meenmo/ratelib/instruments/bonds"
	"github.com/meenmo/ratelib/internal/envconfig"
	"github.com/meenmo/ratelib/logger"
	"github.com/meenmo/ratelib/utils"
)

// outputDecimals is the rounding applied to every reported number.
const outputDecimals = 10

type yieldInput struct {
	TaskID      string  `json:"task_id,omitempty"`
	Face        float64 `json:"face"`
	CouponRate  float64 `json:"coupon_rate"`
	Frequency   int     `json:"frequency"`
	Maturity    float64 `json:"maturity"`
	Price       float64 `json:"price"`
	Compounding string  `json:"compounding"`

	// Dated schedule; replaces the bullet schedule when present. Without a
	// settlement date, settlement is trade date + settlement_lag_days business days.
	SettlementDate    string         `json:"settlement_date,omitempty"`
	TradeDate         string         `json:"trade_date,omitempty"`
	SettlementLagDays int            `json:"settlement_lag_days,omitempty"`
	Holidays          []string       `json:"holidays,omitempty"`
	DayCount          string         `json:"day_count,omitempty"`
	Cashflows         []cashflowJSON `json:"cashflows,omitempty"`

	// Optional zero curve for the asset swap spread.
	Curve          []zeroQuoteJSON `json:"curve,omitempty"`
	FloatFrequency int             `json:"float_frequency,omitempty"`
}

type cashflowJSON struct {
	Date      string `json:"date"`
	Coupon    int64  `json:"coupon"`
	Principal int64  `json:"principal"`
}

type zeroQuoteJSON struct {
	Time float64 `json:"time"`
	DF   float64 `json:"df"`
}

type yieldOutput struct {
	TaskID           string   `json:"task_id"`
	Compounding      string   `json:"compounding,omitempty"`
	Yield            float64  `json:"yield"`
	PriceCheck       float64  `json:"price_check"`
	ModifiedDuration float64  `json:"modified_duration"`
	Convexity        float64  `json:"convexity"`
	DV01             float64  `json:"dv01"`
	ASWSpreadBP      *float64 `json:"asw_spread_bp,omitempty"`
	Error            string   `json:"error,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	envFile := flag.String("env", "", "Optional .env file")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: bondyield -input <path>")
		fmt.Fprintln(os.Stderr, "Solve bond yields from prices and report duration, convexity and DV01.")
		return
	}

	cfg, err := envconfig.Load(*envFile)
	if err != nil {
		exitError(fmt.Sprintf("config: %v", err))
	}
	log := logger.New(cfg.Log)
	cfg.Solver.Logger = &log

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Usage: bondyield -input <path>")
			os.Exit(2)
		}
	}

	raw, err := readInput(path)
	if err != nil {
		exitError(fmt.Sprintf("read input: %v", err))
	}

	inputs, isArray, err := parseInputs(raw)
	if err != nil {
		exitError(fmt.Sprintf("parse JSON: %v", err))
	}

	outputs, hadError := processAll(inputs, cfg.Solver, log)

	if isArray {
		b, _ := json.Marshal(outputs)
		fmt.Println(string(b))
	} else {
		b, _ := json.Marshal(outputs[0])
		fmt.Println(string(b))
	}

	if hadError {
		os.Exit(1)
	}
}

func processAll(inputs []yieldInput, solver config.Config, log zerolog.Logger) ([]yieldOutput, bool) {
	hadError := false
	outputs := make([]yieldOutput, 0, len(inputs))
	for _, in := range inputs {
		if in.TaskID == "" {
			in.TaskID = uuid.NewString()
		}
		out, err := process(in, solver)
		if err != nil {
			hadError = true
			log.Error().Err(err).Str("task_id", in.TaskID).Msg("Yield calculation failed")
			outputs = append(outputs, yieldOutput{TaskID: in.TaskID, Error: err.Error()})
			continue
		}
		outputs = append(outputs, *out)
	}
	return outputs, hadError
}

func process(in yieldInput, solver config.Config) (*yieldOutput, error) {
	m := curve.Semiannual
	if in.Compounding != "" {
		var err error
		if m, err = curve.ParseCompounding(in.Compounding); err != nil {
			return nil, err
		}
	}

	b, err := buildBond(in)
	if err != nil {
		return nil, err
	}

	y, err := b.YieldFromPrice(in.Price, m, solver)
	if err != nil {
		return nil, err
	}

	cfs := b.CashFlows()
	out := &yieldOutput{
		TaskID:           in.TaskID,
		Compounding:      m.String(),
		Yield:            round(y),
		PriceCheck:       round(b.PriceAtYield(y, m)),
		ModifiedDuration: round(bond.ModifiedDuration(cfs, y, m)),
		Convexity:        round(bond.Convexity(cfs, y, m)),
		DV01:             round(bond.DV01(cfs, y, m)),
	}

	if len(in.Curve) > 0 {
		quotes := make([]curve.ZeroQuote, 0, len(in.Curve))
		for _, q := range in.Curve {
			quotes = append(quotes, curve.ZeroQuote{Time: q.Time, DF: q.DF})
		}
		crv, err := curve.NewBootstrappedCurve(quotes)
		if err != nil {
			return nil, fmt.Errorf("invalid curve: %w", err)
		}
		freq := in.FloatFrequency
		if freq == 0 {
			freq = 4
		}
		asw, err := b.ASWSpread(crv, in.Price, freq)
		if err != nil {
			return nil, err
		}
		spread := round(asw.SpreadBP)
		out.ASWSpreadBP = &spread
	}

	return out, nil
}

func buildBond(in yieldInput) (*bonds.Bond, error) {
	if len(in.Cashflows) == 0 {
		return bonds.NewBond(in.Face, in.CouponRate, in.Frequency, in.Maturity)
	}

	settlement, err := settlementDate(in)
	if err != nil {
		return nil, err
	}
	dc := utils.Act365F
	if in.DayCount != "" {
		if dc, err = utils.ParseDayCount(in.DayCount); err != nil {
			return nil, err
		}
	}

	rows := make([]bonds.CashflowCents, 0, len(in.Cashflows))
	for _, cf := range in.Cashflows {
		d, err := utils.ParseDate(cf.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid cashflow date %s: %w", cf.Date, err)
		}
		rows = append(rows, bonds.CashflowCents{Date: d, CouponCents: cf.Coupon, PrincipalCents: cf.Principal})
	}
	return bonds.NewBondFromCashFlows(in.Face, bonds.CentsToCashFlows(settlement, dc, rows))
}

func settlementDate(in yieldInput) (time.Time, error) {
	if in.SettlementDate != "" || in.TradeDate == "" {
		d, err := utils.ParseDate(in.SettlementDate)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid settlement_date: %w", err)
		}
		return d, nil
	}

	trade, err := utils.ParseDate(in.TradeDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid trade_date: %w", err)
	}
	cal, err := calendar.Parse(in.Holidays)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid holidays: %w", err)
	}
	return cal.AddBusinessDays(trade, in.SettlementLagDays), nil
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(outputDecimals).InexactFloat64()
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func parseInputs(raw []byte) ([]yieldInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []yieldInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input yieldInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []yieldInput{input}, false, nil
}

func exitError(msg string) {
	b, _ := json.Marshal(yieldOutput{Error: msg})
	fmt.Println(string(b))
	os.Exit(1)
}
