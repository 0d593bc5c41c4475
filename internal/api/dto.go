package api

// DetectRequest пакет изображений в base64.
type DetectRequest struct {
	Images []string `json:"images"`
}

// SingleRequest одно изображение в base64.
type SingleRequest struct {
	Image string `json:"image"`
}

type CenterRequest struct {
	DICOMFolder string `json:"dicom_folder" binding:"required"`
	CenterSlice *int   `json:"center_slice" binding:"required"`
}

type ModelInfoResponse struct {
	Name        string `json:"name"`
	Backend     string `json:"backend"`
	Version     string `json:"version,omitempty"`
	InputWidth  int    `json:"input_width"`
	InputHeight int    `json:"input_height"`
}

type HealthResponse struct {
	Status      string             `json:"status"`
	ModelLoaded bool               `json:"model_loaded"`
	Version     string             `json:"version"`
	Model       *ModelInfoResponse `json:"model,omitempty"`
}

type StenosisResponse struct {
	Success              bool      `json:"success"`
	StenosisLeftPercent  float64   `json:"stenosis_left_percent"`
	StenosisRightPercent float64   `json:"stenosis_right_percent"`
	ProcessedImages      int       `json:"processed_images"`
	AreasLeft            []float64 `json:"areas_left"`
	AreasRight           []float64 `json:"areas_right"`
	Masks                []string  `json:"masks,omitempty"`
	Severity             string    `json:"severity,omitempty"` // пусто, если сосуд не найден
	VesselDetected       bool      `json:"vessel_detected"`
}

type CenterResponse struct {
	StenosisResponse
	CenterSlice int `json:"center_slice"`
	StartSlice  int `json:"start_slice"`
	EndSlice    int `json:"end_slice"`
}

type SingleResponse struct {
	Success   bool    `json:"success"`
	Mask      string  `json:"mask,omitempty"`
	AreaLeft  float64 `json:"area_left"`
	AreaRight float64 `json:"area_right"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}
