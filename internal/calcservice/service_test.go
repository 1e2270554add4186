package calcservice

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calendar"
	"github.com/starford/tempus/internal/calendar/mocks"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/metrics"
	"github.com/starford/tempus/internal/models"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/testutil"
	"github.com/starford/tempus/internal/timezone"
)

func testService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	eastern := testutil.DSTZone(t)
	zones := timezone.NewRegistry(time.Minute, func(id string) (timezone.TimeZone, bool) {
		if id == eastern.ID() {
			return eastern, true
		}
		return nil, false
	})
	return NewService(calendar.NewRegistry(), zones, opts...)
}

func dateRecord(y, m, d int) models.ValueRecord {
	return models.ValueRecord{Kind: models.KindPlainDate, Year: calendar.Int(y), Month: calendar.Int(m), Day: calendar.Int(d)}
}

func zonedRecord(y, m, d, h, mi int) models.ValueRecord {
	r := dateRecord(y, m, d)
	r.Kind = models.KindZonedDateTime
	r.TimeZone = "Test/Eastern"
	r.Hour, r.Minute = h, mi
	return r
}

func intOf(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func TestAddAndSubtract(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	resp, err := svc.Add(ctx, models.ArithmeticRequest{
		Value:    dateRecord(2021, 1, 31),
		Duration: duration.Fields{Months: 1},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	v := resp.Value
	if v.Kind != models.KindPlainDate || v.Calendar != calendar.ISO8601 {
		t.Errorf("kind/calendar = %s/%s", v.Kind, v.Calendar)
	}
	if intOf(v.Year) != 2021 || intOf(v.Month) != 2 || intOf(v.Day) != 28 || v.MonthCode != "M02" {
		t.Errorf("got %d-%d-%d %s, want 2021-2-28 M02", intOf(v.Year), intOf(v.Month), intOf(v.Day), v.MonthCode)
	}

	_, err = svc.Subtract(ctx, models.ArithmeticRequest{
		Value:    dateRecord(2021, 3, 31),
		Duration: duration.Fields{Months: 1},
		Overflow: "reject",
	})
	if !errors.Is(err, apperr.ErrRangeOverflow) {
		t.Errorf("reject overflow err = %v", err)
	}

	_, err = svc.Add(ctx, models.ArithmeticRequest{
		Value:    dateRecord(2021, 3, 31),
		Duration: duration.Fields{Months: 1, Days: -1},
	})
	if !errors.Is(err, apperr.ErrMixedSign) {
		t.Errorf("mixed sign err = %v", err)
	}
}

func TestAddToInstant(t *testing.T) {
	svc := testService(t)
	resp, err := svc.Add(context.Background(), models.ArithmeticRequest{
		Value:    models.ValueRecord{Kind: models.KindInstant, EpochNanoseconds: "0"},
		Duration: duration.Fields{Hours: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Value.EpochNanoseconds != "3600000000000" {
		t.Errorf("epoch = %s", resp.Value.EpochNanoseconds)
	}
}

func TestUntilAndSince(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	req := models.DifferenceRequest{
		One:     dateRecord(2021, 1, 31),
		Other:   dateRecord(2021, 3, 1),
		Options: options.DiffOptions{LargestUnit: "month"},
	}

	until, err := svc.Until(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if until.Duration != (duration.Fields{Months: 1, Days: 1}) {
		t.Errorf("until = %s", until.Duration)
	}

	since, err := svc.Since(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if since.Duration != (duration.Fields{Months: -1, Days: -1}) {
		t.Errorf("since = %s", since.Duration)
	}

	req.Other = models.ValueRecord{Kind: models.KindPlainTime}
	if _, err := svc.Until(ctx, req); !errors.Is(err, apperr.ErrInvalidFieldCombination) {
		t.Errorf("kind mismatch err = %v", err)
	}
}

func TestUntilAcrossDST(t *testing.T) {
	svc := testService(t)
	resp, err := svc.Until(context.Background(), models.DifferenceRequest{
		One:   zonedRecord(2021, 3, 13, 12, 0),
		Other: zonedRecord(2021, 3, 14, 12, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Duration != (duration.Fields{Hours: 23}) {
		t.Errorf("until = %s, want 23h", resp.Duration)
	}
}

func TestResolve(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		value    models.ValueRecord
		opts     options.ZonedFieldOptions
		wantUTC  [2]int // hour, minute on 2021-03-14 or 2021-11-07
		wantDay  int
		wantOff  string
		wantHour int
	}{
		{"gap compatible", zonedRecord(2021, 3, 14, 2, 30), options.ZonedFieldOptions{}, [2]int{6, 30}, 14, "-05:00", 1},
		{"gap later", zonedRecord(2021, 3, 14, 2, 30), options.ZonedFieldOptions{Disambiguation: "later"}, [2]int{7, 30}, 14, "-04:00", 3},
		{"overlap earlier", zonedRecord(2021, 11, 7, 1, 30), options.ZonedFieldOptions{Disambiguation: "earlier"}, [2]int{5, 30}, 7, "-04:00", 1},
		{"overlap later", zonedRecord(2021, 11, 7, 1, 30), options.ZonedFieldOptions{Disambiguation: "later"}, [2]int{6, 30}, 7, "-05:00", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.Resolve(ctx, models.ResolveRequest{Value: tc.value, Options: tc.opts})
			if err != nil {
				t.Fatal(err)
			}
			month := 3
			if tc.wantDay == 7 {
				month = 11
			}
			want := testutil.UTCInstant(t, 2021, month, tc.wantDay, tc.wantUTC[0], tc.wantUTC[1]).Big().String()
			if resp.Value.EpochNanoseconds != want {
				t.Errorf("epoch = %s, want %s", resp.Value.EpochNanoseconds, want)
			}
			if resp.Value.Offset != tc.wantOff || resp.Value.Hour != tc.wantHour {
				t.Errorf("local %02d:%02d%s, want hour %d offset %s",
					resp.Value.Hour, resp.Value.Minute, resp.Value.Offset, tc.wantHour, tc.wantOff)
			}
		})
	}

	t.Run("explicit offset picks the overlap half", func(t *testing.T) {
		rec := zonedRecord(2021, 11, 7, 1, 30)
		rec.Offset = "-05:00"
		resp, err := svc.Resolve(ctx, models.ResolveRequest{Value: rec})
		if err != nil {
			t.Fatal(err)
		}
		if resp.Value.Offset != "-05:00" {
			t.Errorf("offset = %s", resp.Value.Offset)
		}
	})

	t.Run("reject in a gap", func(t *testing.T) {
		_, err := svc.Resolve(ctx, models.ResolveRequest{
			Value:   zonedRecord(2021, 3, 14, 2, 30),
			Options: options.ZonedFieldOptions{Disambiguation: "reject"},
		})
		if !errors.Is(err, apperr.ErrAmbiguousTime) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("wrong offset is rejected", func(t *testing.T) {
		rec := zonedRecord(2021, 7, 1, 12, 0)
		rec.Offset = "+01:00"
		_, err := svc.Resolve(ctx, models.ResolveRequest{Value: rec})
		if !errors.Is(err, apperr.ErrAmbiguousTime) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("needs a zoned value", func(t *testing.T) {
		_, err := svc.Resolve(ctx, models.ResolveRequest{Value: dateRecord(2021, 1, 1)})
		if !errors.Is(err, apperr.ErrInvalidOption) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestWith(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	t.Run("new month keeps the day within range", func(t *testing.T) {
		resp, err := svc.With(ctx, models.WithRequest{Value: dateRecord(2021, 1, 31), Fields: models.FieldPatch{Month: calendar.Int(2)}})
		if err != nil {
			t.Fatal(err)
		}
		v := resp.Value
		if intOf(v.Year) != 2021 || intOf(v.Month) != 2 || intOf(v.Day) != 28 || v.MonthCode != "M02" {
			t.Errorf("got %d-%d-%d %s", intOf(v.Year), intOf(v.Month), intOf(v.Day), v.MonthCode)
		}

		_, err = svc.With(ctx, models.WithRequest{
			Value:   dateRecord(2021, 1, 31),
			Fields:  models.FieldPatch{Month: calendar.Int(2)},
			Options: options.ZonedFieldOptions{Overflow: "reject"},
		})
		if !errors.Is(err, apperr.ErrRangeOverflow) {
			t.Errorf("reject overflow err = %v", err)
		}
	})

	t.Run("month code replaces month", func(t *testing.T) {
		resp, err := svc.With(ctx, models.WithRequest{Value: dateRecord(2021, 1, 15), Fields: models.FieldPatch{MonthCode: "M07"}})
		if err != nil {
			t.Fatal(err)
		}
		if intOf(resp.Value.Month) != 7 || intOf(resp.Value.Day) != 15 {
			t.Errorf("got month %d day %d", intOf(resp.Value.Month), intOf(resp.Value.Day))
		}
	})

	t.Run("era year replaces year", func(t *testing.T) {
		rec := dateRecord(2021, 6, 1)
		rec.Calendar = calendar.Gregorian
		resp, err := svc.With(ctx, models.WithRequest{Value: rec, Fields: models.FieldPatch{Era: "bce", EraYear: calendar.Int(5)}})
		if err != nil {
			t.Fatal(err)
		}
		v := resp.Value
		if intOf(v.Year) != -4 || v.Era != "bce" || intOf(v.EraYear) != 5 {
			t.Errorf("got year %d era %s %d", intOf(v.Year), v.Era, intOf(v.EraYear))
		}
	})

	t.Run("era fields are ignored without eras", func(t *testing.T) {
		_, err := svc.With(ctx, models.WithRequest{Value: dateRecord(2021, 6, 1), Fields: models.FieldPatch{EraYear: calendar.Int(5)}})
		if !errors.Is(err, apperr.ErrInvalidOption) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("year-month and month-day", func(t *testing.T) {
		ym := dateRecord(2020, 2, 1)
		ym.Kind, ym.Day = models.KindPlainYearMonth, nil
		resp, err := svc.With(ctx, models.WithRequest{Value: ym, Fields: models.FieldPatch{Year: calendar.Int(2024)}})
		if err != nil {
			t.Fatal(err)
		}
		if intOf(resp.Value.Year) != 2024 || intOf(resp.Value.Month) != 2 || resp.Value.Day != nil {
			t.Errorf("year-month = %d-%d", intOf(resp.Value.Year), intOf(resp.Value.Month))
		}

		md := models.ValueRecord{Kind: models.KindPlainMonthDay, MonthCode: "M02", Day: calendar.Int(10)}
		resp, err = svc.With(ctx, models.WithRequest{Value: md, Fields: models.FieldPatch{Day: calendar.Int(29)}})
		if err != nil {
			t.Fatal(err)
		}
		if resp.Value.MonthCode != "M02" || intOf(resp.Value.Day) != 29 {
			t.Errorf("month-day = %s-%d", resp.Value.MonthCode, intOf(resp.Value.Day))
		}
	})

	t.Run("time fields", func(t *testing.T) {
		rec := models.ValueRecord{Kind: models.KindPlainTime, Hour: 10, Minute: 15, Second: 30}
		resp, err := svc.With(ctx, models.WithRequest{Value: rec, Fields: models.FieldPatch{Hour: calendar.Int(7)}})
		if err != nil {
			t.Fatal(err)
		}
		if resp.Value.Hour != 7 || resp.Value.Minute != 15 || resp.Value.Second != 30 {
			t.Errorf("time = %02d:%02d:%02d", resp.Value.Hour, resp.Value.Minute, resp.Value.Second)
		}

		_, err = svc.With(ctx, models.WithRequest{Value: rec, Fields: models.FieldPatch{Day: calendar.Int(2)}})
		if !errors.Is(err, apperr.ErrInvalidOption) {
			t.Errorf("date field on a time err = %v", err)
		}
	})

	t.Run("date-time keeps the clock", func(t *testing.T) {
		rec := dateRecord(2021, 3, 31)
		rec.Kind, rec.Hour, rec.Minute = models.KindPlainDateTime, 18, 5
		resp, err := svc.With(ctx, models.WithRequest{Value: rec, Fields: models.FieldPatch{Month: calendar.Int(4)}})
		if err != nil {
			t.Fatal(err)
		}
		v := resp.Value
		if intOf(v.Month) != 4 || intOf(v.Day) != 30 || v.Hour != 18 || v.Minute != 5 {
			t.Errorf("got %d-%d %02d:%02d", intOf(v.Month), intOf(v.Day), v.Hour, v.Minute)
		}
	})

	t.Run("zoned value keeps its offset in an overlap", func(t *testing.T) {
		rec := zonedRecord(2021, 11, 7, 1, 30)
		rec.Offset = "-05:00"
		resp, err := svc.With(ctx, models.WithRequest{Value: rec, Fields: models.FieldPatch{Minute: calendar.Int(45)}})
		if err != nil {
			t.Fatal(err)
		}
		want := testutil.UTCInstant(t, 2021, 11, 7, 6, 45).Big().String()
		if resp.Value.EpochNanoseconds != want || resp.Value.Offset != "-05:00" {
			t.Errorf("epoch = %s offset %s, want %s -05:00", resp.Value.EpochNanoseconds, resp.Value.Offset, want)
		}

		// Resolving the same fields without the old offset picks the earlier half.
		rec.Minute, rec.Offset = 45, ""
		plain, err := svc.Resolve(ctx, models.ResolveRequest{Value: rec})
		if err != nil {
			t.Fatal(err)
		}
		if plain.Value.Offset != "-04:00" {
			t.Errorf("resolve offset = %s", plain.Value.Offset)
		}
	})

	t.Run("zoned value moved into a gap", func(t *testing.T) {
		resp, err := svc.With(ctx, models.WithRequest{Value: zonedRecord(2021, 3, 13, 2, 30), Fields: models.FieldPatch{Day: calendar.Int(14)}})
		if err != nil {
			t.Fatal(err)
		}
		if resp.Value.Hour != 3 || resp.Value.Minute != 30 || resp.Value.Offset != "-04:00" {
			t.Errorf("local %02d:%02d%s, want 03:30-04:00", resp.Value.Hour, resp.Value.Minute, resp.Value.Offset)
		}

		_, err = svc.With(ctx, models.WithRequest{
			Value:   zonedRecord(2021, 3, 13, 2, 30),
			Fields:  models.FieldPatch{Day: calendar.Int(14)},
			Options: options.ZonedFieldOptions{Offset: "reject"},
		})
		if !errors.Is(err, apperr.ErrAmbiguousTime) {
			t.Errorf("offset reject err = %v", err)
		}
	})

	t.Run("offset only", func(t *testing.T) {
		rec := zonedRecord(2021, 11, 7, 1, 30)
		resp, err := svc.With(ctx, models.WithRequest{Value: rec, Fields: models.FieldPatch{Offset: "-05:00"}})
		if err != nil {
			t.Fatal(err)
		}
		want := testutil.UTCInstant(t, 2021, 11, 7, 6, 30).Big().String()
		if resp.Value.EpochNanoseconds != want {
			t.Errorf("epoch = %s, want %s", resp.Value.EpochNanoseconds, want)
		}
	})

	t.Run("bad requests", func(t *testing.T) {
		cases := []models.WithRequest{
			{Value: dateRecord(2021, 1, 1)},
			{Value: dateRecord(2021, 1, 1), Fields: models.FieldPatch{Offset: "+01:00"}},
			{Value: models.ValueRecord{Kind: models.KindInstant, EpochNanoseconds: "0"}, Fields: models.FieldPatch{Hour: calendar.Int(1)}},
			{Value: dateRecord(2021, 1, 1), Fields: models.FieldPatch{Hour: calendar.Int(-1)}},
		}
		for i, req := range cases {
			if _, err := svc.With(ctx, req); !errors.Is(err, apperr.ErrInvalidOption) {
				t.Errorf("case %d err = %v", i, err)
			}
		}
	})
}

func TestRound(t *testing.T) {
	svc := testService(t)
	resp, err := svc.Round(context.Background(), models.RoundRequest{
		Value:   models.ValueRecord{Kind: models.KindPlainTime, Hour: 10, Minute: 29, Second: 45},
		Options: options.RoundOptions{SmallestUnit: "minute"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Value.Hour != 10 || resp.Value.Minute != 30 || resp.Value.Second != 0 {
		t.Errorf("rounded to %02d:%02d:%02d", resp.Value.Hour, resp.Value.Minute, resp.Value.Second)
	}
}

func TestDurationOperations(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	total, err := svc.DurationTotal(ctx, models.DurationTotalRequest{
		Duration: duration.Fields{Hours: 36},
		Options:  options.TotalOptions{Unit: "day"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if total.Total != 1.5 || total.Unit != "day" {
		t.Errorf("total = %v %s", total.Total, total.Unit)
	}

	rel := dateRecord(2021, 1, 1)
	rounded, err := svc.DurationRound(ctx, models.DurationRoundRequest{
		Duration:   duration.Fields{Days: 45},
		RelativeTo: &rel,
		Options:    options.DurationRoundOptions{DiffOptions: options.DiffOptions{SmallestUnit: "month"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rounded.Duration != (duration.Fields{Months: 2}) {
		t.Errorf("rounded = %s, want 2 months", rounded.Duration)
	}

	_, err = svc.DurationRound(ctx, models.DurationRoundRequest{
		Duration: duration.Fields{Days: 45},
		Options:  options.DurationRoundOptions{DiffOptions: options.DiffOptions{SmallestUnit: "month"}},
	})
	if !errors.Is(err, apperr.ErrMissingRelativeTo) {
		t.Errorf("missing relativeTo err = %v", err)
	}

	sum, err := svc.DurationAdd(ctx, models.DurationPairRequest{
		One:   duration.Fields{Days: 1, Hours: 12},
		Other: duration.Fields{Hours: 12},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Duration != (duration.Fields{Days: 2}) {
		t.Errorf("sum = %s", sum.Duration)
	}

	cmp, err := svc.DurationCompare(ctx, models.DurationPairRequest{
		One:   duration.Fields{Hours: 25},
		Other: duration.Fields{Days: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Result != 1 {
		t.Errorf("compare = %d", cmp.Result)
	}

	badRel := models.ValueRecord{Kind: models.KindPlainTime}
	_, err = svc.DurationTotal(ctx, models.DurationTotalRequest{
		Duration:   duration.Fields{Hours: 1},
		RelativeTo: &badRel,
		Options:    options.TotalOptions{Unit: "hour"},
	})
	if !errors.Is(err, apperr.ErrInvalidOption) {
		t.Errorf("time as relativeTo err = %v", err)
	}
}

func TestDay(t *testing.T) {
	svc := testService(t)
	resp, err := svc.Day(context.Background(), "Test/Eastern", iso.Date{Year: 2021, Month: 11, Day: 7})
	if err != nil {
		t.Fatal(err)
	}
	if resp.HoursInDay != 25 {
		t.Errorf("hoursInDay = %v", resp.HoursInDay)
	}
	if resp.Start.Hour != 0 || resp.Start.Offset != "-04:00" {
		t.Errorf("start = %02d:00%s", resp.Start.Hour, resp.Start.Offset)
	}

	if _, err := svc.Day(context.Background(), "Mars/Base", iso.Date{Year: 2021, Month: 1, Day: 1}); !errors.Is(err, apperr.ErrUnknownTimeZone) {
		t.Errorf("unknown zone err = %v", err)
	}
	if _, err := svc.Day(context.Background(), "UTC", iso.Date{Year: 2021, Month: 2, Day: 30}); !errors.Is(err, apperr.ErrRangeOverflow) {
		t.Errorf("bad date err = %v", err)
	}
}

func TestDecodeEncode(t *testing.T) {
	svc := testService(t)

	t.Run("month day", func(t *testing.T) {
		v, err := svc.decode(models.ValueRecord{Kind: models.KindPlainMonthDay, MonthCode: "M02", Day: calendar.Int(29)}, defaultZoned)
		if err != nil {
			t.Fatal(err)
		}
		r, err := encode(v)
		if err != nil {
			t.Fatal(err)
		}
		if r.Year != nil || intOf(r.Month) != 2 || intOf(r.Day) != 29 {
			t.Errorf("record = %+v", r)
		}
	})

	t.Run("gregorian era", func(t *testing.T) {
		rec := models.ValueRecord{Kind: models.KindPlainYearMonth, Calendar: "gregory", Era: "bce", EraYear: calendar.Int(1), Month: calendar.Int(3)}
		v, err := svc.decode(rec, defaultZoned)
		if err != nil {
			t.Fatal(err)
		}
		r, err := encode(v)
		if err != nil {
			t.Fatal(err)
		}
		if intOf(r.Year) != 0 || r.Era != "bce" || intOf(r.EraYear) != 1 || r.Day != nil {
			t.Errorf("record = %+v", r)
		}
	})

	t.Run("bad input", func(t *testing.T) {
		for _, rec := range []models.ValueRecord{
			{Kind: "Bogus"},
			{Kind: models.KindInstant, EpochNanoseconds: "99999999999999999999999999"},
			{Kind: models.KindZonedDateTime, TimeZone: "Mars/Base", Year: calendar.Int(2021), Month: calendar.Int(1), Day: calendar.Int(1)},
			{Kind: models.KindPlainDate, Calendar: "klingon"},
		} {
			if _, err := svc.decode(rec, defaultZoned); err == nil {
				t.Errorf("decode(%+v) succeeded", rec)
			} else if apperr.ClassOf(err) == apperr.ClassInternal {
				t.Errorf("decode(%+v) err %v has no class", rec, err)
			}
		}
	})
}

type fakeCatalog []models.ZoneInfo

func (f fakeCatalog) Zones() []models.ZoneInfo { return append([]models.ZoneInfo(nil), f...) }

func TestListZonesAndCalendars(t *testing.T) {
	svc := testService(t)
	if zones := svc.ListZones(context.Background()); zones == nil || len(zones) != 0 {
		t.Errorf("no catalog zones = %v", zones)
	}
	svc = testService(t, WithCatalog(fakeCatalog{{ID: "Test/B"}, {ID: "Test/A"}}))
	zones := svc.ListZones(context.Background())
	if len(zones) != 2 || zones[0].ID != "Test/A" {
		t.Errorf("zones = %v", zones)
	}
	if ids := svc.Calendars(); len(ids) != 2 || ids[0] != "gregory" || ids[1] != "iso8601" {
		t.Errorf("calendars = %v", ids)
	}
	if opts := Options(); len(opts["unit"]) != 10 || len(opts["roundingMode"]) != 9 {
		t.Errorf("options = %v", opts)
	}
}

func TestCalculateDispatch(t *testing.T) {
	svc := testService(t)
	req, err := NewRequest(OpUntil)
	if err != nil {
		t.Fatal(err)
	}
	diff := req.(*models.DifferenceRequest)
	diff.One, diff.Other = dateRecord(2021, 1, 1), dateRecord(2021, 1, 11)

	out, err := svc.Calculate(context.Background(), OpUntil, req)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.(models.DurationResponse).Duration; got != (duration.Fields{Days: 10}) {
		t.Errorf("until = %s", got)
	}

	if _, err := NewRequest("teleport"); !errors.Is(err, apperr.ErrInvalidOption) {
		t.Errorf("unknown op err = %v", err)
	}
	if _, err := svc.Calculate(context.Background(), OpDay, req); !errors.Is(err, apperr.ErrInvalidOption) {
		t.Errorf("mismatched op err = %v", err)
	}
}

func TestContractViolationIsLoggedAndCounted(t *testing.T) {
	ctrl := gomock.NewController(t)
	cal := mocks.NewMockCalendar(ctrl)
	cal.EXPECT().ID().Return("faulty").AnyTimes()
	cal.EXPECT().DateFromFields(gomock.Any(), gomock.Any()).DoAndReturn(
		func(f calendar.DateFields, _ options.Overflow) (iso.Date, error) {
			return iso.Date{Year: *f.Year, Month: *f.Month, Day: *f.Day}, nil
		}).AnyTimes()
	cal.EXPECT().DateUntil(gomock.Any(), gomock.Any(), gomock.Any()).Return(duration.Fields{Months: -2}, nil)

	var logs bytes.Buffer
	var hooked []string
	m := metrics.New(nil, "")
	svc := NewService(calendar.NewRegistry(cal), timezone.NewRegistry(time.Minute),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
		WithMetrics(m),
		WithViolationHook(func(op string, err error) { hooked = append(hooked, op) }),
	)

	one := models.ValueRecord{Kind: models.KindPlainDateTime, Calendar: "faulty",
		Year: calendar.Int(2021), Month: calendar.Int(1), Day: calendar.Int(1)}
	other := one
	other.Month, other.Hour = calendar.Int(3), 12
	_, err := svc.Until(context.Background(), models.DifferenceRequest{
		One: one, Other: other, Options: options.DiffOptions{LargestUnit: "month"},
	})
	if !apperr.IsContractViolation(err) {
		t.Fatalf("err = %v, want contract violation", err)
	}
	if !strings.Contains(logs.String(), `"level":"ERROR"`) || !strings.Contains(logs.String(), `"op":"until"`) {
		t.Errorf("log = %s", logs.String())
	}
	if len(hooked) != 1 || hooked[0] != OpUntil {
		t.Errorf("hook calls = %v", hooked)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `tempus_calc_errors_total{class="contract"} 1`) {
		t.Errorf("metrics missing contract error:\n%s", rec.Body.String())
	}
}

func TestDefaultTimeZone(t *testing.T) {
	rec := zonedRecord(2021, 7, 1, 12, 0)
	rec.TimeZone = ""

	if _, err := testService(t).Resolve(context.Background(), models.ResolveRequest{Value: rec}); !errors.Is(err, apperr.ErrUnknownTimeZone) {
		t.Errorf("no default zone err = %v", err)
	}

	svc := testService(t, WithDefaultTimeZone("Test/Eastern"))
	resp, err := svc.Resolve(context.Background(), models.ResolveRequest{Value: rec})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Value.TimeZone != "Test/Eastern" || resp.Value.Offset != "-04:00" {
		t.Errorf("resolved in %s%s", resp.Value.TimeZone, resp.Value.Offset)
	}
}
