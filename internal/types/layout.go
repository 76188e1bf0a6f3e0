package types

// TableBorders summarizes the border structure of one table. It is not
// pixel-perfect, but enough to check the APA style of three horizontal
// lines and no vertical lines.
type TableBorders struct {
	HasTopBorder          bool `json:"has_top_border"`
	HasHeaderBottomBorder bool `json:"has_header_bottom_border"`
	HasBottomBorder       bool `json:"has_bottom_border"`

	HasVerticalInnerBorders bool `json:"has_vertical_inner_borders"`
	HasVerticalOuterBorders bool `json:"has_vertical_outer_borders"`
	HorizontalInternalLines int  `json:"horizontal_internal_lines_count"`
}

// TableLayout is one table detected in the document by the parsing collaborator.
type TableLayout struct {
	Index   int          `json:"index"`
	Label   string       `json:"label,omitempty"`
	Title   string       `json:"title,omitempty"`
	Borders TableBorders `json:"borders"`
}

// ImageLayout is one image or figure with its approximate size in centimeters.
type ImageLayout struct {
	Index    int     `json:"index"`
	Label    string  `json:"label,omitempty"`
	Caption  string  `json:"caption,omitempty"`
	WidthCM  float64 `json:"width_cm"`
	HeightCM float64 `json:"height_cm"`
}

// DocumentLayout is the pre-built structural description of tables and images
// supplied by the document-parsing collaborator. The engine never derives it
// from raw text.
type DocumentLayout struct {
	Tables []TableLayout `json:"tables,omitempty"`
	Images []ImageLayout `json:"images,omitempty"`
}
