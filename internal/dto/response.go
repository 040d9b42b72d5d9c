package dto

// HealthResponse 健康检查
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
