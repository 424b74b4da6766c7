package numerology

import (
	"fmt"
	"sort"
	"strings"
)

// Category names an interpretation table.
type Category string

const (
	CategoryLifePath     Category = "life_path"
	CategoryDestiny      Category = "destiny"
	CategorySoulUrge     Category = "soul_urge"
	CategoryPersonality  Category = "personality"
	CategoryBirthday     Category = "birthday"
	CategoryKarmicDebt   Category = "karmic_debt"
	CategoryMasterNumber Category = "master_number"
	CategoryMaturity     Category = "maturity"
	CategoryChallenge    Category = "challenge"
	CategoryPinnacle     Category = "pinnacle"
)

// Interpreter maps a number in a category to a descriptive sentence.
// Implementations never fail; unknown numbers get a fallback sentence.
type Interpreter interface {
	Interpret(c Category, n int) string
}

// StaticInterpreter serves the built-in tables.
type StaticInterpreter struct{}

// Interpret implements Interpreter.
func (StaticInterpreter) Interpret(c Category, n int) string {
	if s, ok := interpretations[c][n]; ok {
		return s
	}
	if s, ok := fallbacks[c]; ok {
		return s
	}
	return genericFallback
}

// Interpret looks n up in the built-in tables.
func Interpret(c Category, n int) string {
	return StaticInterpreter{}.Interpret(c, n)
}

// ParseCategory accepts snake_case, kebab-case or camelCase names.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	for c := range interpretations {
		if strings.ReplaceAll(string(c), "_", "") == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown interpretation category %q (want one of %s)", s, strings.Join(categoryNames(), ", "))
}

// Categories returns every category in a stable order.
func Categories() []Category {
	out := make([]Category, 0, len(interpretations))
	for c := range interpretations {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func categoryNames() []string {
	cats := Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

const genericFallback = "This number carries a meaning of its own."

var fallbacks = map[Category]string{
	CategoryLifePath:     "Your life path number reveals your unique journey and purpose.",
	CategoryDestiny:      "Your destiny number reveals your life purpose and mission.",
	CategorySoulUrge:     "Your soul urge number reveals your deepest desires and motivations.",
	CategoryPersonality:  "Your personality number reveals how others perceive you.",
	CategoryBirthday:     "Your birthday number reveals your natural talents and abilities.",
	CategoryKarmicDebt:   "This karmic debt number reveals lessons you must learn in this lifetime.",
	CategoryMasterNumber: "This master number reveals your special spiritual gifts.",
	CategoryMaturity:     "Your maturity number reveals your potential in later life.",
	CategoryChallenge:    "Your challenge number reveals the lessons you need to learn.",
	CategoryPinnacle:     "This pinnacle period brings unique opportunities for growth.",
}

var interpretations = map[Category]map[int]string{
	CategoryLifePath: {
		1:  "You are a natural leader with strong independence and determination.",
		2:  "You are diplomatic, cooperative, and have a natural ability to work with others.",
		3:  "You are creative, expressive, and have a gift for communication.",
		4:  "You are practical, organized, and have a strong work ethic.",
		5:  "You are adventurous, freedom-loving, and embrace change.",
		6:  "You are nurturing, responsible, and have a strong sense of family.",
		7:  "You are spiritual, analytical, and seek deeper meaning in life.",
		8:  "You are ambitious, materialistic, and have strong business acumen.",
		9:  "You are humanitarian, compassionate, and seek to help others.",
		11: "You are intuitive, inspirational, and have spiritual gifts.",
		22: "You are a master builder with the ability to manifest dreams into reality.",
		33: "You are a master teacher with the ability to inspire and heal others.",
	},
	CategoryDestiny: {
		1:  "Your destiny is to lead and inspire others through your independence.",
		2:  "Your destiny is to bring harmony and cooperation to the world.",
		3:  "Your destiny is to express creativity and bring joy to others.",
		4:  "Your destiny is to build and organize systems that benefit society.",
		5:  "Your destiny is to experience life fully and share your adventures.",
		6:  "Your destiny is to nurture and care for others.",
		7:  "Your destiny is to seek truth and share spiritual wisdom.",
		8:  "Your destiny is to achieve material success and help others prosper.",
		9:  "Your destiny is to serve humanity and make a positive impact.",
		11: "Your destiny is to inspire others through your spiritual insights.",
		22: "Your destiny is to build something lasting that benefits many.",
		33: "Your destiny is to teach and heal others through your wisdom.",
	},
	CategorySoulUrge: {
		1:  "Your soul craves independence and the ability to lead.",
		2:  "Your soul craves partnership and harmonious relationships.",
		3:  "Your soul craves creative expression and joy.",
		4:  "Your soul craves stability and security.",
		5:  "Your soul craves freedom and new experiences.",
		6:  "Your soul craves love and nurturing relationships.",
		7:  "Your soul craves spiritual understanding and truth.",
		8:  "Your soul craves material success and recognition.",
		9:  "Your soul craves to serve and help others.",
		11: "Your soul craves spiritual enlightenment and inspiration.",
		22: "Your soul craves to build something meaningful and lasting.",
		33: "Your soul craves to teach and heal others.",
	},
	CategoryPersonality: {
		1:  "You appear confident, independent, and a natural leader.",
		2:  "You appear diplomatic, cooperative, and peace-loving.",
		3:  "You appear creative, expressive, and optimistic.",
		4:  "You appear practical, reliable, and hardworking.",
		5:  "You appear adventurous, dynamic, and freedom-loving.",
		6:  "You appear nurturing, responsible, and family-oriented.",
		7:  "You appear mysterious, analytical, and spiritual.",
		8:  "You appear ambitious, confident, and business-oriented.",
		9:  "You appear wise, compassionate, and humanitarian.",
		11: "You appear intuitive, inspirational, and spiritually gifted.",
		22: "You appear masterful, practical, and capable of great achievements.",
		33: "You appear wise, compassionate, and spiritually evolved.",
	},
	CategoryBirthday: {
		1:  "You have natural leadership abilities and independence.",
		2:  "You have diplomatic skills and work well with others.",
		3:  "You have creative talents and communication skills.",
		4:  "You have practical abilities and organizational skills.",
		5:  "You have an adventurous spirit and adaptability.",
		6:  "You have nurturing abilities and a sense of responsibility.",
		7:  "You have an analytical mind and spiritual awareness.",
		8:  "You have business acumen and material success potential.",
		9:  "You have humanitarian instincts and wisdom.",
		11: "You have intuitive gifts and spiritual insights.",
		22: "You have master builder abilities and practical wisdom.",
		33: "You have master teacher abilities and healing gifts.",
	},
	CategoryKarmicDebt: {
		13: "Karmic debt of laziness: you must learn to work hard and be disciplined.",
		14: "Karmic debt of excess: you must learn moderation and balance.",
		16: "Karmic debt of ego: you must learn humility and service to others.",
		19: "Karmic debt of power: you must learn to use power wisely and for good.",
	},
	CategoryMasterNumber: {
		11: "Master number of intuition and inspiration: you have spiritual gifts.",
		22: "Master number of the master builder: you can manifest dreams into reality.",
		33: "Master number of the master teacher: you can inspire and heal others.",
	},
	CategoryMaturity: {
		1:  "In maturity, you will become a confident leader and pioneer.",
		2:  "In maturity, you will become a diplomatic peacemaker and collaborator.",
		3:  "In maturity, you will become a creative artist and communicator.",
		4:  "In maturity, you will become a practical builder and organizer.",
		5:  "In maturity, you will become an adventurous explorer and teacher.",
		6:  "In maturity, you will become a nurturing caregiver and healer.",
		7:  "In maturity, you will become a spiritual teacher and philosopher.",
		8:  "In maturity, you will become a successful business leader and achiever.",
		9:  "In maturity, you will become a humanitarian leader and healer.",
		11: "In maturity, you will become an inspirational spiritual leader.",
		22: "In maturity, you will become a master builder and visionary.",
		33: "In maturity, you will become a master teacher and healer.",
	},
	CategoryChallenge: {
		0: "Your challenge is to develop self-confidence and independence.",
		1: "Your challenge is to balance independence with cooperation.",
		2: "Your challenge is to develop patience and diplomacy.",
		3: "Your challenge is to express creativity while staying grounded.",
		4: "Your challenge is to build stability while remaining flexible.",
		5: "Your challenge is to embrace change while maintaining focus.",
		6: "Your challenge is to balance responsibility with personal needs.",
		7: "Your challenge is to seek truth while staying practical.",
		8: "Your challenge is to achieve success while remaining ethical.",
		9: "Your challenge is to serve others while caring for yourself.",
	},
	CategoryPinnacle: {
		1:  "This pinnacle period brings opportunities for leadership and independence.",
		2:  "This pinnacle period brings opportunities for cooperation and partnership.",
		3:  "This pinnacle period brings opportunities for creativity and expression.",
		4:  "This pinnacle period brings opportunities for building and organizing.",
		5:  "This pinnacle period brings opportunities for adventure and change.",
		6:  "This pinnacle period brings opportunities for nurturing and responsibility.",
		7:  "This pinnacle period brings opportunities for spiritual growth and wisdom.",
		8:  "This pinnacle period brings opportunities for material success and achievement.",
		9:  "This pinnacle period brings opportunities for humanitarian service.",
		11: "This pinnacle period brings opportunities for spiritual inspiration.",
		22: "This pinnacle period brings opportunities for master building.",
		33: "This pinnacle period brings opportunities for master teaching.",
	},
}
