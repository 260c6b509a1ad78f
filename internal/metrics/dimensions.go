// File path: internal/metrics/dimensions.go
package metrics

// Dimension tags used across the pipeline.
const (
	DimensionWellbeing = "wellbeing"
	DimensionComfort   = "comfort"
	DimensionDelight   = "delight"
	DimensionSocial    = "social"
)

const (
	RoomIDColumn = "room_ids"
	FloorColumn  = "floor_level"
	// CorePrefix marks shared core spaces, which are not rated for delight.
	CorePrefix = "CORE"
)

func ComfortSpec() DimensionSpec {
	return DimensionSpec{
		Dimension:   DimensionComfort,
		IDColumn:    RoomIDColumn,
		FloorColumn: FloorColumn,
		Factors: []FactorSpec{
			{Name: "thermal", Column: "extreme_hot_satisf"},
			{Name: "daylight", Column: "daylight_satisf"},
			{Name: "acoustic", Column: "sound_satisf"},
			{Name: "air_quality", Column: "air_quali"},
		},
	}
}

func DelightSpec() DimensionSpec {
	core := []string{CorePrefix}
	return DimensionSpec{
		Dimension:   DimensionDelight,
		IDColumn:    RoomIDColumn,
		FloorColumn: FloorColumn,
		Factors: []FactorSpec{
			{Name: "views", Column: "views_overall_satisf", ExcludePrefixes: core},
			{Name: "balcony", Column: "balcony_satisf", ExcludePrefixes: core},
			{Name: "space_size", Column: "space_size_satisf", ExcludePrefixes: core},
		},
	}
}

func SocialSpec() DimensionSpec {
	return DimensionSpec{
		Dimension:   DimensionSocial,
		IDColumn:    RoomIDColumn,
		FloorColumn: FloorColumn,
		Factors: []FactorSpec{
			{Name: "social_amount", Column: "social_amount_satisf"},
			{Name: "social_distribution", Column: "social_distribution_satisf"},
			{Name: "social_green", Column: "social_green_satisf"},
		},
	}
}

// StandardSpecs returns the factor dimensions in report order.
func StandardSpecs() []DimensionSpec {
	return []DimensionSpec{ComfortSpec(), DelightSpec(), SocialSpec()}
}
