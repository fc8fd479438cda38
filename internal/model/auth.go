package model

import "github.com/golang-jwt/jwt/v5"

// StaffClaims are JWT claims for academy staff using the dashboard
type StaffClaims struct {
	StaffID  string `json:"staffId"`
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for staff login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token    string `json:"token"`
	StaffID  string `json:"staffId"`
	TenantID string `json:"tenantId"`
}
