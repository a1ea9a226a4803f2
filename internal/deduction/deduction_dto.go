package deduction

type DeductionRequest struct {
	Name       string  `json:"name" binding:"required"`
	Percentage float64 `json:"percentage" binding:"required,gt=0"`
}

type DeductionResponse struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}
