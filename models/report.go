package models

// Report statuses as stored in the Reportes table.
const (
	StatusActive   = "Activo"
	StatusFalse    = "Falso"
	StatusVerified = "Verificado"
	StatusDoubtful = "Dudoso"
)

// DefaultCategory is used when a report carries no category.
const DefaultCategory = "Otro"

// Report is a user-submitted safety incident record.
type Report struct {
	ID          int64    `json:"id"`
	UserID      int64    `json:"user_id"`
	Title       string   `json:"titulo"`
	Description string   `json:"descripcion"`
	Category    string   `json:"categoria"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Address     string   `json:"direccion"`
	District    string   `json:"distrito"`
	Status      string   `json:"estado"`
	Veracity    float64  `json:"veracidad_porcentaje"`
	Upvotes     int      `json:"cantidad_upvotes"`
	Downvotes   int      `json:"cantidad_downvotes"`
	CreatedAt   string   `json:"created_at"`
}

// CategoryOrDefault normalizes a missing category for tallies.
func (r *Report) CategoryOrDefault() string {
	if r.Category == "" {
		return DefaultCategory
	}
	return r.Category
}

// HasCoordinates reports whether both lat and lon are present.
func (r *Report) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil
}

// CreateReportRequest is the payload for POST /Reportes.
type CreateReportRequest struct {
	UserID      int64    `json:"user_id" binding:"required"`
	Title       string   `json:"titulo" binding:"required"`
	Description string   `json:"descripcion"`
	Category    string   `json:"categoria"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Address     string   `json:"direccion"`
	Status      string   `json:"estado"`
	Veracity    *float64 `json:"veracidad_porcentaje"`
	Upvotes     int      `json:"cantidad_upvotes"`
	Downvotes   int      `json:"cantidad_downvotes"`
}

// UpdateReportRequest is the payload for PATCH /Reportes/:id.
// Nil fields are left untouched.
type UpdateReportRequest struct {
	Title       *string  `json:"titulo"`
	Description *string  `json:"descripcion"`
	Category    *string  `json:"categoria"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Address     *string  `json:"direccion"`
	District    *string  `json:"distrito"`
	Status      *string  `json:"estado"`
	Veracity    *float64 `json:"veracidad_porcentaje"`
	Upvotes     *int     `json:"cantidad_upvotes"`
	Downvotes   *int     `json:"cantidad_downvotes"`
}
