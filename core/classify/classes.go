package classify

// DefaultClasses is the class list the shipped model is trained on, in
// model output order.
var DefaultClasses = []string{
	"Healthy",
	"Pest_Fungal",
	"Pest_Bacterial",
	"Pest_Insect",
	"Nutrient_Nitrogen",
	"Nutrient_Potassium",
	"Water_Stress",
	"Not_Plant",
}

var explanations = map[string]string{
	"Healthy":            "Plant appears healthy with no visible issues detected.",
	"Pest_Fungal":        "Fungal infection detected. Look for powdery spots, mold, or discoloration. Treatment: Apply fungicide and improve air circulation.",
	"Pest_Bacterial":     "Bacterial infection detected. Water-soaked lesions or wilting observed. Treatment: Use copper-based bactericide and remove infected parts.",
	"Pest_Insect":        "Insect damage detected. Holes, chewed edges, or insect presence. Treatment: Apply appropriate insecticide or use neem oil.",
	"Nutrient_Nitrogen":  "Nitrogen deficiency detected. Yellowing of older leaves, stunted growth. Treatment: Apply nitrogen-rich fertilizer.",
	"Nutrient_Potassium": "Potassium deficiency detected. Leaf edge browning, weak stems. Treatment: Apply potassium fertilizer.",
	"Water_Stress":       "Water stress detected. Wilting or dry soil conditions. Treatment: Adjust watering schedule.",
	"Not_Plant":          "This is not a plant image. Please upload a clear image of a plant leaf for disease detection.",
}

var recommendations = map[string][]string{
	"Healthy": {
		"Continue current care routine",
		"Monitor for any changes",
		"Maintain proper watering and sunlight",
	},
	"Pest_Fungal": {
		"Apply fungicide (copper-based or organic)",
		"Improve air circulation around plant",
		"Remove affected leaves",
		"Reduce humidity if possible",
	},
	"Pest_Bacterial": {
		"Use copper-based bactericide",
		"Remove and destroy infected parts",
		"Avoid overhead watering",
		"Sterilize tools between plants",
	},
	"Pest_Insect": {
		"Identify specific insect pest",
		"Apply appropriate insecticide",
		"Use neem oil for organic treatment",
		"Introduce beneficial insects",
	},
	"Nutrient_Nitrogen": {
		"Apply nitrogen-rich fertilizer",
		"Use compost or manure",
		"Consider foliar feeding",
		"Test soil pH",
	},
	"Nutrient_Potassium": {
		"Apply potassium fertilizer",
		"Use wood ash or kelp meal",
		"Avoid over-fertilization with nitrogen",
		"Monitor leaf symptoms",
	},
	"Water_Stress": {
		"Adjust watering schedule",
		"Check soil moisture regularly",
		"Improve drainage if waterlogged",
		"Mulch to retain moisture",
	},
	"Not_Plant": {
		"Please upload a clear image of a plant leaf for disease detection.",
	},
}

var fallbackRecommendations = []string{"Consult agricultural expert"}
