package basinexport

// Catalog names the platform assets the workflow reads. the defaults
// match the USGS watershed-boundary / hydrography / 3DEP layout.
type Catalog struct {
	// feature collection of watershed-boundary polygons
	WatershedAsset string `json:"watershed_asset"`
	// feature collection of stream flowlines
	HydrographyAsset string `json:"hydrography_asset"`
	// elevation raster
	DemAsset string `json:"dem_asset"`
	// feature property carrying the HUC identifier, e.g. "huc8"
	HucProperty string `json:"huc_property"`
}

// ExportParams carries the literal export dictionary the analyst would
// otherwise paste into every submission.
type ExportParams struct {
	Bucket string `json:"bucket"`
	Folder string `json:"folder"`
	// meters per pixel for the DEM export
	Scale       float64 `json:"scale"`
	MaxPixels   int64   `json:"max_pixels"`
	ImageFormat string  `json:"image_format"`
	TableFormat string  `json:"table_format"`
}

type Config struct {
	Catalog Catalog `json:"catalog"`
	// named groups of HUC identifiers, one export run per group
	Regions map[string][]string `json:"regions"`
	Export  ExportParams        `json:"export"`
}
