package drying

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateScheduled   State = "PROGRAMADO"
	StateDrying      State = "SECANDO"
	StateReadyForBFT State = "LISTO PARA BFT"
	StateFinalized   State = "FINALIZADO"
)

var order = map[State]int{
	StateScheduled:   0,
	StateDrying:      1,
	StateReadyForBFT: 2,
	StateFinalized:   3,
}

// ParseState: неизвестное или пустое значение бэкенда считаем PROGRAMADO.
func ParseState(s string) State {
	st := State(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := order[st]; ok {
		return st
	}
	return StateScheduled
}

// CanAdvanceTo: только вперёд, через любое число шагов.
func (s State) CanAdvanceTo(next State) bool {
	from, ok1 := order[s]
	to, ok2 := order[next]
	return ok1 && ok2 && to > from
}

var (
	ErrBackwardTransition = errors.New("drying: lot state can only move forward")
	ErrLotFrozen          = errors.New("drying: finalized lot total is frozen")
	ErrNotReady           = errors.New("drying: lot is not ready for BFT")
	ErrInvalidLot         = errors.New("drying: incomplete lot")
)

type Chamber struct {
	ID          int64
	Description string
	Capacity    string
}

func (c Chamber) Label() string {
	name := c.Description
	if name == "" {
		name = fmt.Sprintf("Cámara %d", c.ID)
	}
	if c.Capacity != "" {
		return name + " (Cap: " + c.Capacity + ")"
	}
	return name
}

type Lot struct {
	ID        int64
	ChamberID int64
	Species   string
	Start     time.Time
	End       time.Time
	PalletIDs []int64
	TotalBFT  decimal.Decimal
	Notes     string
	State     State
}

func (l Lot) InProcess() bool { return l.State != StateFinalized }

// Advance возвращает копию лота в новом состоянии.
func (l Lot) Advance(next State) (Lot, error) {
	if !l.State.CanAdvanceTo(next) {
		return l, fmt.Errorf("%w: %s -> %s", ErrBackwardTransition, l.State, next)
	}
	out := l
	out.PalletIDs = append([]int64(nil), l.PalletIDs...)
	out.State = next
	return out, nil
}

func (l Lot) WithTotal(total decimal.Decimal) (Lot, error) {
	if l.State == StateFinalized {
		return l, ErrLotFrozen
	}
	out := l
	out.PalletIDs = append([]int64(nil), l.PalletIDs...)
	out.TotalBFT = total
	return out, nil
}

// Split делит лоты на вкладки «En proceso» и «Historial».
func Split(lots []Lot) (process, history []Lot) {
	for _, l := range lots {
		if l.InProcess() {
			process = append(process, l)
		} else {
			history = append(history, l)
		}
	}
	return process, history
}

type NewLot struct {
	ChamberID int64
	Start     time.Time
	End       time.Time
	PalletIDs []int64
	Notes     string
}

func (n NewLot) Validate() error {
	if n.ChamberID == 0 || n.Start.IsZero() || n.End.IsZero() || len(n.PalletIDs) == 0 {
		return fmt.Errorf("%w: chamber, dates and at least one pallet are required", ErrInvalidLot)
	}
	if n.End.Before(n.Start) {
		return fmt.Errorf("%w: end date %s before start %s", ErrInvalidLot, DateOnly(n.End), DateOnly(n.Start))
	}
	return nil
}

const (
	wireLayout = "2006-01-02T15:04:05"
	dayLayout  = "2006-01-02"
	shiftHour  = 8
)

// AtShiftStart: дата в 08:00 локального времени завода.
func AtShiftStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), shiftHour, 0, 0, 0, loc)
}

// ParseDay принимает "2026-10-14" или "14/10/2026".
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{dayLayout, "02/01/2006", "2/1/2006"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return AtShiftStart(t, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// WireDate: формат дат, который ждёт /api/secado/crear.
func WireDate(t time.Time) string { return t.Format(wireLayout) }

func DateOnly(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dayLayout)
}
