package mcpserver

// RecordFormat describes the JSON records the calculator tools accept and
// return. LLM clients read it before building tool arguments.
const RecordFormat = `# Tempus Record Format

Every temporal value travels as one JSON object ("value record").

## Value record

` + "```" + `json
{
  "kind": "ZonedDateTime",          // REQUIRED - see the kind list below
  "calendar": "iso8601",            // OPTIONAL - iso8601 (default) or gregory
  "timeZone": "America/New_York",   // ZonedDateTime only - IANA id, catalog id, UTC or +HH:MM
  "offset": "-05:00",               // ZonedDateTime only - pins one side of an overlap
  "era": "ce", "eraYear": 2021,     // OPTIONAL - gregory only, alternative to year
  "year": 2021, "month": 11, "monthCode": "M11", "day": 7,
  "hour": 1, "minute": 30, "second": 0,
  "millisecond": 0, "microsecond": 0, "nanosecond": 0,
  "epochNanoseconds": "1636263000000000000"   // Instant; or an exact ZonedDateTime
}
` + "```" + `

Kinds: Instant, ZonedDateTime, PlainDateTime, PlainDate, PlainTime,
PlainYearMonth, PlainMonthDay, Duration.

## Rules

1. **month and monthCode** may both be given but must agree. PlainMonthDay
   records should use monthCode.
2. **epochNanoseconds is a decimal string**, never a JSON number. It carries
   more digits than a float64 can hold.
3. **Zoned records without epochNanoseconds** are resolved from their local
   fields. Times skipped by a DST gap or repeated by an overlap follow the
   disambiguation option (compatible by default).
4. **Instants ignore calendar fields**; plain kinds ignore timeZone.
5. **temporal_with fields** use the same names as the value record, plus
   offset for zoned values. A new month drops the old monthCode; on gregory
   a new year drops era and eraYear. Zoned values keep their offset when it
   still fits the new wall time.

## Durations

` + "```" + `json
{"years": 0, "months": 1, "weeks": 0, "days": 2, "hours": 12,
 "minutes": 0, "seconds": 0, "milliseconds": 0, "microseconds": 0, "nanoseconds": 0}
` + "```" + `

All non-zero fields must share one sign. Durations with years, months or
weeks need a relativeTo record to be rounded, totalled or compared.

## Options

Accepted option values are served by the ` + "`" + `tempus://options` + "`" + ` resource.
Difference and rounding options use the keys largestUnit, smallestUnit,
roundingIncrement and roundingMode; units are singular ("month", "hour").

## Example

temporal_until with
` + "```" + `
one   = {"kind":"PlainDate","year":2021,"month":1,"day":31}
other = {"kind":"PlainDate","year":2021,"month":3,"day":1}
options = {"largestUnit":"month"}
` + "```" + `
returns ` + "`" + `{"duration":{"months":1,"days":1}}` + "`" + `.
`
