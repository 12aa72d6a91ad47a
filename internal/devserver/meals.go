// ABOUTME: Meal analysis, creation, listing, and chat handlers.
package devserver

import (
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/kcal/internal/nutrition"
)

const maxUploadSize = 10 << 20

func (s *Server) analyzeMeal(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		validationError(c, "file is required")
		return
	}
	if fh.Size > maxUploadSize {
		detail(c, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		detail(c, http.StatusInternalServerError, "AI analysis failed")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		detail(c, http.StatusInternalServerError, "AI analysis failed")
		return
	}

	if http.DetectContentType(data) != "image/jpeg" {
		c.JSON(http.StatusOK, gin.H{
			"name": "", "calories": 0, "protein": 0, "fats": 0, "carbs": 0,
			"weight_grams": 0, "is_food": false,
		})
		return
	}

	// The same photo always yields the same food.
	foods := nutrition.KnownFoods()
	food := foods[crc32.ChecksumIEEE(data)%uint32(len(foods))]
	c.JSON(http.StatusOK, gin.H{
		"name":         food.Name,
		"calories":     food.Calories,
		"protein":      0,
		"fats":         0,
		"carbs":        0,
		"weight_grams": 100,
		"is_food":      true,
	})
}

func (s *Server) createMeal(c *gin.Context) {
	var body struct {
		Name        string  `json:"name"`
		Calories    *int    `json:"calories"`
		Protein     float64 `json:"protein"`
		Fats        float64 `json:"fats"`
		Carbs       float64 `json:"carbs"`
		WeightGrams float64 `json:"weight_grams"`
		ImageURL    *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		validationError(c, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		validationError(c, "name is required")
		return
	}
	if body.Calories == nil || *body.Calories < 0 {
		validationError(c, "calories must be a non-negative integer")
		return
	}
	if body.Protein < 0 || body.Fats < 0 || body.Carbs < 0 || body.WeightGrams < 0 {
		validationError(c, "amounts must not be negative")
		return
	}

	s.mu.Lock()
	m := meal{
		ID:          s.nextMealID,
		UserID:      c.GetInt(userIDKey),
		Name:        strings.TrimSpace(body.Name),
		Calories:    *body.Calories,
		Protein:     body.Protein,
		Fats:        body.Fats,
		Carbs:       body.Carbs,
		WeightGrams: body.WeightGrams,
		ImageURL:    body.ImageURL,
		CreatedAt:   s.opts.Now(),
	}
	s.nextMealID++
	s.meals = append(s.meals, m)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, m)
}

func (s *Server) listMeals(c *gin.Context) {
	userID := c.GetInt(userIDKey)

	s.mu.Lock()
	out := make([]meal, 0)
	for i := len(s.meals) - 1; i >= 0; i-- {
		if s.meals[i].UserID == userID {
			out = append(out, s.meals[i])
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

var questionPattern = regexp.MustCompile(`User question: "((?:[^"\\]|\\.)*)"`)
var eatenPattern = regexp.MustCompile(`Eaten today: (\d+) kcal`)
var goalPattern = regexp.MustCompile(`daily goal (\d+) kcal`)

func (s *Server) chat(c *gin.Context) {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		validationError(c, "message is required")
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		detail(c, http.StatusBadRequest, "Message empty")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": advisorReply(body.Message)})
}

// advisorReply answers from the data block the client embeds in the prompt.
func advisorReply(prompt string) string {
	var sb strings.Builder
	if m := questionPattern.FindStringSubmatch(prompt); m != nil {
		fmt.Fprintf(&sb, "You asked \"%s\". ", m[1])
	}

	eaten := matchInt(eatenPattern, prompt)
	goal := matchInt(goalPattern, prompt)

	switch {
	case eaten >= 0 && goal > 0 && eaten > goal:
		fmt.Fprintf(&sb, "You are %d kcal over your goal today; keep the next meal light.", eaten-goal)
	case eaten >= 0 && goal > 0:
		fmt.Fprintf(&sb, "You have %d kcal left today; a lean protein with vegetables fits well.", goal-eaten)
	case goal <= 0:
		sb.WriteString("Set up your profile so I can tailor advice to your daily goal.")
	default:
		sb.WriteString("Log your meals so I can see how your day is going.")
	}
	return sb.String()
}

// matchInt returns the first captured integer of re in s, or -1.
func matchInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}
