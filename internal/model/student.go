package model

// Student is the subset of a student profile needed for notifications
type Student struct {
	ID       string `json:"id" bson:"_id"`
	TenantID string `json:"tenantId" bson:"tenantId"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
}
