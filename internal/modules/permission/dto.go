package permission

type SetPermissionRequest struct {
	Role    string `json:"role" binding:"required"`
	Page    string `json:"page" binding:"required"`
	Allowed *bool  `json:"allowed" binding:"required"`
}
