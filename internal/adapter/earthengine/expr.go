package earthengine

import (
	"time"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
)

// Earth Engine expressions are graphs of value nodes. A node is either a constant
// or a function invocation whose arguments are themselves nodes. The whole query is
// sent as a single expression and evaluated server-side.

// nativeScale is the dataset's nominal pixel size in metres.
const nativeScale = 25000

type node map[string]any

type expression struct {
	Result string          `json:"result"`
	Values map[string]node `json:"values"`
}

type computeRequest struct {
	Expression expression `json:"expression"`
}

func newComputeRequest(root node) computeRequest {
	return computeRequest{Expression: expression{Result: "0", Values: map[string]node{"0": root}}}
}

func constant(v any) node {
	return node{"constantValue": v}
}

func invoke(fn string, args map[string]node) node {
	if args == nil {
		args = map[string]node{}
	}
	return node{"functionInvocationValue": map[string]any{
		"functionName": fn,
		"arguments":    args,
	}}
}

func point(p domain.Point) node {
	return invoke("GeometryConstructors.Point", map[string]node{
		"coordinates": constant([]float64{p.Lon, p.Lat}),
	})
}

func dateRange(start, end time.Time) node {
	return invoke("DateRange", map[string]node{
		"start": constant(start.UTC().Format(time.RFC3339)),
		"end":   constant(end.UTC().Format(time.RFC3339)),
	})
}

func filter(collection, f node) node {
	return invoke("Collection.filter", map[string]node{
		"collection": collection,
		"filter":     f,
	})
}

// collection loads the dataset and applies the date, attribute, and bounds filters.
// end is exclusive.
func collection(q domain.CollectionQuery, start, end time.Time) node {
	c := invoke("ImageCollection.load", map[string]node{"id": constant(q.Dataset)})
	c = filter(c, invoke("Filter.dateRangeContains", map[string]node{
		"leftValue":  dateRange(start, end),
		"rightField": constant("system:time_start"),
	}))
	c = filter(c, invoke("Filter.equals", map[string]node{
		"leftField":  constant("model"),
		"rightValue": constant(string(q.Model)),
	}))
	c = filter(c, invoke("Filter.equals", map[string]node{
		"leftField":  constant("scenario"),
		"rightValue": constant(string(q.Scenario)),
	}))
	return filter(c, invoke("Filter.intersects", map[string]node{
		"leftField":  constant(".all"),
		"rightValue": point(q.Point),
	}))
}

func reducer(name string) node {
	return invoke("Reducer."+name, nil)
}

// sumAndMean combines the two reducers over shared inputs, so every band yields
// <band>_sum and <band>_mean outputs.
func sumAndMean() node {
	return invoke("Reducer.combine", map[string]node{
		"reducer1":     reducer("sum"),
		"reducer2":     reducer("mean"),
		"sharedInputs": constant(true),
	})
}

func reduceRegion(image, red node, p domain.Point) node {
	return invoke("Image.reduceRegion", map[string]node{
		"image":    image,
		"reducer":  red,
		"geometry": point(p),
		"scale":    constant(nativeScale),
	})
}

// dayExpr reduces the first image of the day at the point.
func dayExpr(q domain.CollectionQuery, day time.Time) node {
	day = domain.Truncate(day)
	first := invoke("Collection.first", map[string]node{
		"collection": collection(q, day, day.AddDate(0, 0, 1)),
	})
	return reduceRegion(first, reducer("first"), q.Point)
}

// timestampsExpr lists system:time_start (epoch millis) for every image in range.
func timestampsExpr(q domain.CollectionQuery) node {
	return invoke("AggregateFeatureCollection.array", map[string]node{
		"collection": collection(q, q.Start, q.End),
		"property":   constant("system:time_start"),
	})
}

// monthExpr re-filters to the month (clipped to the query range), reduces over time
// with sum and mean, then reduces the composite at the point.
func monthExpr(q domain.CollectionQuery, month domain.YearMonth) node {
	start, end := monthWindow(q, month)
	composite := invoke("ImageCollection.reduce", map[string]node{
		"collection": collection(q, start, end),
		"reducer":    sumAndMean(),
	})
	return reduceRegion(composite, reducer("first"), q.Point)
}

func monthWindow(q domain.CollectionQuery, month domain.YearMonth) (time.Time, time.Time) {
	start, end := month.Start(), month.Next().Start()
	if q.Start.After(start) {
		start = q.Start
	}
	if !q.End.IsZero() && q.End.Before(end) {
		end = q.End
	}
	return start, end
}
