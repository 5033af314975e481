// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package numerology

var lifePathMeanings = map[int]string{
	1:  "Leadership, independence and new beginnings.",
	2:  "Cooperation, diplomacy and sensitivity to others.",
	3:  "Creativity, self-expression and social ease.",
	4:  "Stability, discipline and steady building.",
	5:  "Freedom, change and adventurous curiosity.",
	6:  "Responsibility, care and devotion to home and family.",
	7:  "Reflection, analysis and a search for deeper truth.",
	8:  "Ambition, authority and material achievement.",
	9:  "Compassion, completion and service to others.",
	11: "Intuition and inspiration; a master number of spiritual insight.",
	22: "The master builder; large visions turned into practical results.",
	33: "The master teacher; healing and uplifting others.",
}

var personalYearMeanings = map[int]string{
	1:  "A year of fresh starts and planting seeds.",
	2:  "A year of patience, partnership and quiet growth.",
	3:  "A year of expression, joy and social expansion.",
	4:  "A year of hard work and laying foundations.",
	5:  "A year of change, travel and unexpected turns.",
	6:  "A year centred on home, love and responsibility.",
	7:  "A year of study, rest and inner work.",
	8:  "A year of power, money and recognition.",
	9:  "A year of endings, release and preparation for a new cycle.",
	11: "A year of heightened intuition and spiritual awakening.",
	22: "A year to build something lasting on a large scale.",
	33: "A year of service, teaching and compassion.",
}

// LifePathMeaning returns a short description, or "" for numbers without one.
func LifePathMeaning(n int) string {
	return lifePathMeanings[n]
}

// PersonalYearMeaning returns a short description, or "" for numbers without one.
func PersonalYearMeaning(n int) string {
	return personalYearMeanings[n]
}
