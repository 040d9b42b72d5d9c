package dto

// WorkspaceTokenResponse 新建工作区响应
type WorkspaceTokenResponse struct {
	WorkspaceID string `json:"workspace_id"`
	Token       string `json:"token"`
	ExpiresAt   string `json:"expires_at"`
	ExpiresIn   int    `json:"expires_in"` // 秒
}
