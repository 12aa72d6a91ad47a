// ABOUTME: Meal image analysis and meal creation calls.
// ABOUTME: Both require a bearer token held by the client.
package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// Analysis is the result of analyzing a meal photo. IsFood=false means no
// food was detected; the other fields are then zero.
type Analysis struct {
	Name        string  `json:"name"`
	Calories    int     `json:"calories"`
	Protein     float64 `json:"protein"`
	Fats        float64 `json:"fats"`
	Carbs       float64 `json:"carbs"`
	WeightGrams float64 `json:"weight_grams"`
	IsFood      bool    `json:"is_food"`
	ImagePath   *string `json:"image_path,omitempty"`
}

// analysisBody distinguishes an absent is_food from false.
type analysisBody struct {
	Analysis
	IsFood *bool `json:"is_food"`
}

// Meal is the payload for creating a meal remotely.
type Meal struct {
	Name        string  `json:"name"`
	Calories    int     `json:"calories"`
	Protein     float64 `json:"protein"`
	Fats        float64 `json:"fats"`
	Carbs       float64 `json:"carbs"`
	WeightGrams float64 `json:"weight_grams"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// RemoteMeal is a meal as stored by the remote service.
type RemoteMeal struct {
	Meal
	ID int `json:"id"`
}

// AnalyzeImage uploads a JPEG and returns the recognized food.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte) (*Analysis, error) {
	if !c.Authenticated() {
		return nil, newError(ErrUnauthorized, 0, "not logged in", nil)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, newError(ErrConnection, 0, "rate limit wait", err)
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="meal.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, http.MethodPost, "/meals/analyze", mw.FormDataContentType(), &buf, true)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		return nil, statusError(resp, ErrServer)
	}

	var body analysisBody
	if err := decode(resp, &body); err != nil {
		return nil, err
	}
	a := body.Analysis
	// The service omits is_food for recognized food.
	a.IsFood = body.IsFood == nil || *body.IsFood
	if a.IsFood && a.Name == "" {
		return nil, errMissingField(resp.status, "name")
	}
	return &a, nil
}

// CreateMeal stores a meal on the remote service. Only 200 and 201 count as success.
func (c *Client) CreateMeal(ctx context.Context, meal Meal) error {
	if !c.Authenticated() {
		return newError(ErrUnauthorized, 0, "not logged in", nil)
	}
	resp, err := c.postJSON(ctx, "/meals/", meal, true)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK && resp.status != http.StatusCreated {
		return statusError(resp, ErrServer)
	}
	return nil
}

// ListMeals returns the meals stored remotely for the current user.
func (c *Client) ListMeals(ctx context.Context) ([]RemoteMeal, error) {
	resp, err := c.send(ctx, http.MethodGet, "/meals/", "", nil, true)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		return nil, statusError(resp, ErrServer)
	}
	var meals []RemoteMeal
	if err := decode(resp, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}
