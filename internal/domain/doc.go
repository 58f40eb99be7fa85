// Package domain models NEX-GDDP-CMIP6 climate projection data for a single point.
//
// # Data Source
//
// Projections come from the NASA/GDDP-CMIP6 image collection: one global image per
// day, per climate model, per emissions scenario, at roughly 25 km resolution. The
// collection lives in a remote geospatial service; this package never touches
// pixels. It describes the query ([QueryParams], [CollectionQuery]), the scalar
// values the service reduces to ([RawSample]), and the records derived from them.
//
// # Bands and Units
//
//	pr      precipitation flux, kg m-2 s-1 (equivalent to mm/s of water)
//	tasmin  daily minimum near-surface air temperature, Kelvin
//	tasmax  daily maximum near-surface air temperature, Kelvin
//
// Conversions:
//
//	precipitation_mm = pr * 86400        (seconds per day)
//	temperature_c    = t_k - 273.15
//
// For monthly records the service sums pr across the days of the month before the
// conversion, so precipitation_mm is a monthly total. Temperatures are monthly means.
//
// # Date Range
//
// Only future projections are served: both ends of the range must fall within
// 2025-01-01 and 2100-12-31, and the start must be strictly before the end. The end
// date is inclusive. Dates are calendar days in UTC.
//
// # Risk Labels
//
// Monthly records carry two coarse labels derived from fixed thresholds. They are
// illustrative heuristics, not a validated hazard model:
//
//	Flood:   precipitation > 100 mm High | > 50 mm Moderate | otherwise Low
//	Drought: precipitation < 30 mm and max temp > 30 °C High
//	         precipitation < 50 mm and max temp > 25 °C Moderate
//	         otherwise Low
//
// # CSV
//
// Records serialize to CSV with a fixed header (see [DailyCSVHeader] and
// [MonthlyCSVHeader]). Floats use the shortest representation that parses back to
// the same value, so a decoded file reproduces the records exactly.
package domain
