package bot

import "math/rand"

// candidateTitles is the fixed pick list for /random. A pick that is already in
// the lookup cache within its TTL will skip the provider call; acceptable.
var candidateTitles = []string{
	"The Shawshank Redemption",
	"The Godfather",
	"Pulp Fiction",
	"Inception",
	"The Matrix",
	"Forrest Gump",
	"Fight Club",
	"Interstellar",
	"Gladiator",
	"The Dark Knight",
	"Back to the Future",
	"Alien",
	"Heat",
	"Casablanca",
	"Spirited Away",
}

// movieQuotes is the fixed pick list for /quote. No provider call, no history.
var movieQuotes = []string{
	"«Я сделаю ему предложение, от которого он не сможет отказаться.» — Крёстный отец",
	"«Да пребудет с тобой Сила.» — Звёздные войны",
	"«Я вернусь.» — Терминатор",
	"«Хьюстон, у нас проблема.» — Аполлон-13",
	"«Беги, Форрест, беги!» — Форрест Гамп",
	"«Первое правило Бойцовского клуба: никому не рассказывать о Бойцовском клубе.» — Бойцовский клуб",
	"«Нет ложки.» — Матрица",
	"«Добавь красок в серые будни.» — Грязный Гарри",
	"«Жизнь — как коробка шоколадных конфет: никогда не знаешь, что попадётся.» — Форрест Гамп",
	"«Это и есть твоя тайна? Я всегда зол.» — Мстители",
}

func randomTitle() string {
	return candidateTitles[rand.Intn(len(candidateTitles))]
}

func randomQuote() string {
	return movieQuotes[rand.Intn(len(movieQuotes))]
}
