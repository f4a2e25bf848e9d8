package wordlist

import "github.com/verte-zerg/dmt/internal/model"

var seedPools = map[int][]string{
	LevelOneSyllable: {
		"kat", "boom", "oog", "zee", "lui", "vak", "kip", "pop", "beer", "bos", "kam", "mat", "nek", "pen",
		"rok", "sap", "tas", "vis", "weg", "zak", "bel", "dol", "fel", "hol", "mol", "nul", "vel", "wil",
		"zal", "ik", "je", "het", "de", "dat", "is", "een", "en", "van", "wat", "we", "in", "ze", "hij",
		"te", "op", "er", "met", "die", "heb", "me", "als", "was", "ben", "om", "dit", "aan", "dan", "hier",
		"zo", "jij", "kan", "geen", "nog", "ja", "hem", "wel", "moet", "wil", "goed", "haar", "nee", "hoe",
		"nu", "waar", "ook", "uit", "zou", "ga", "of", "mij", "bij", "al", "ons", "had", "daar", "kom",
		"laat", "dus", "jou", "wie", "doe", "door", "toch", "eens", "man", "nou", "zei", "mee", "komt",
		"toen", "veel", "net", "uw", "zeg", "zit", "hou", "kijk", "heel", "wij", "mag", "dood", "af", "jaar",
		"hun", "dag", "huis", "doet", "zie", "keer", "zij", "dank", "geef", "zich", "erg", "wilt", "geld",
		"kon", "werk", "oh", "werd", "vind", "vast", "ging", "uur", "neem", "leuk", "god", "maak", "lang",
		"kwam", "he", "toe", "drie", "zegt", "deed", "maakt", "ziet",
	},
	LevelCluster: {
		"fiets", "school", "stoel", "sneeuw", "vlaai", "storm", "jurk", "grond", "korst", "vrucht", "brand",
		"dwerg", "gracht", "kracht", "plant", "slang", "trein", "vlag", "zwart", "blauw", "groen", "rood",
		"geel", "niet", "zijn", "maar", "voor", "mijn", "naar", "weet", "heeft", "over", "gaan", "bent",
		"iets", "gaat", "zal", "hebt", "meer", "deze", "denk", "echt", "zien", "nooit", "terug", "niets",
		"tijd", "weer", "twee", "wordt", "tegen", "gedaan", "zeker", "dacht", "wacht", "staat", "klaar",
		"hele", "graag", "steeds",
	},
	LevelMulti: {
		"bibliotheek", "verjaardag", "bankstel", "familie", "wandelingen", "banden", "aarzelen", "dromen",
		"keukentafel", "computer", "olifant", "vliegtuig", "telefoon", "middag", "avond", "morgen",
		"vandaag", "gisteren", "hebben", "jullie", "waarom", "moeten", "kunnen", "alleen", "alles",
		"misschien", "laten", "iemand", "even", "onze", "gewoon", "weten", "komen", "nodig", "mensen",
		"worden", "zeggen", "leven", "maken", "omdat", "altijd", "wilde", "vader", "kunt", "vrouw",
		"andere", "zoals", "anders", "waren", "willen", "bedankt", "praten", "moeder", "niemand",
		"vinden", "gezien", "binnen", "zitten", "zullen", "helpen", "genoeg", "sorry", "elkaar",
		"natuurlijk", "alle", "bedoel", "dingen", "eerste", "krijgen", "zonder", "hallo", "houden",
		"vertellen", "idee", "iedereen", "beter", "alsjeblieft",
	},
}

var seedTags = map[string]string{
	"kat":         "short vowel",
	"boom":        "long vowel",
	"fiets":       "consonant blend",
	"school":      "consonant cluster",
	"bibliotheek": "long word",
	"verjaardag":  "compound word",
}

// SeedWords returns the built-in DMT word pools for levels 1 to 3.
func SeedWords() []model.Word {
	var words []model.Word
	seen := map[string]struct{}{}
	for level := LevelOneSyllable; level <= LevelMulti; level++ {
		for _, text := range seedPools[level] {
			if _, ok := seen[text]; ok {
				continue
			}
			seen[text] = struct{}{}
			tags, ok := seedTags[text]
			if !ok {
				tags = PatternTags(text)
			}
			words = append(words, model.Word{Text: text, DifficultyLevel: level, PatternTags: tags})
		}
	}
	return words
}
