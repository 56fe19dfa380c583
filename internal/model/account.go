package model

// Profile holds the demo account settings shown on the profile screen
type Profile struct {
	Name           string `json:"name" form:"name"`
	Email          string `json:"email" form:"email"`
	Country        string `json:"country" form:"country"`
	Language       string `json:"language" form:"language"`
	Notifications  bool   `json:"notifications" form:"notifications"`
	TravelAlerts   bool   `json:"travelAlerts" form:"travelAlerts"`
	Newsletter     bool   `json:"newsletter" form:"newsletter"`
	OfflineCountry string `json:"offlineCountry" form:"offlineCountry"`
}

// SignupForm is the payload of the signup screen
type SignupForm struct {
	Name            string `json:"name" form:"name" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"eqfield=Password"`
	AgreeToTerms    bool   `json:"agreeToTerms" form:"agreeToTerms" validate:"required"`
}

// FavoriteCountry is a country bookmarked on the profile screen
type FavoriteCountry struct {
	Name        string `json:"name"`
	Flag        string `json:"flag"`
	LawCount    int    `json:"lawCount"`
	LastVisited string `json:"lastVisited"`
}

// Activity is one entry of the profile activity feed
type Activity struct {
	Action string `json:"action"`
	Item   string `json:"item"`
	When   string `json:"when"`
}

// PlanFeatures lists the feature bullets of the free and premium plans
type PlanFeatures struct {
	Free    []string `json:"free"`
	Premium []string `json:"premium"`
}
