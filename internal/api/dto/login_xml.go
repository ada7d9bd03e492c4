package dto

import "encoding/xml"

// FODDailyDelivery is the delivery-schedule bitmask, Sunday through
// Saturday. 1 means delivery on that day; for now every day delivers.
const FODDailyDelivery = "1111111"

// LoginDocument is the fixed XML shape the external reader service expects
// from the validate-token endpoint. Failure responses carry empty TOKEN and
// UNIQUE_USER_ID elements and omit the optional ones.
type LoginDocument struct {
	XMLName      xml.Name `xml:"LOGIN"`
	Token        string   `xml:"TOKEN"`
	UniqueUserID string   `xml:"UNIQUE_USER_ID"`
	Email        string   `xml:"EMAIL,omitempty"`
	UserName     string   `xml:"USER_NAME,omitempty"`
	IsLogged     string   `xml:"IS_LOGGED"`
	FOD          string   `xml:"FOD,omitempty"`
}

// FailureLoginDocument is the response for any validation miss.
func FailureLoginDocument() LoginDocument {
	return LoginDocument{IsLogged: "No"}
}

// SuccessLoginDocument echoes the token back with the reader's identity.
func SuccessLoginDocument(tokenValue, slug, email, displayName string) LoginDocument {
	return LoginDocument{
		Token:        tokenValue,
		UniqueUserID: slug,
		Email:        email,
		UserName:     displayName,
		IsLogged:     "Yes",
		FOD:          FODDailyDelivery,
	}
}
