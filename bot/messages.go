package bot

// User-facing reply texts. The bot speaks Russian; logs stay in English.
const (
	msgWelcome = "Добро пожаловать! Я могу помочь вам найти информацию о фильмах. Просто напишите название фильма."

	msgHelp = "Вот как использовать этого бота:\n" +
		"/start - Начать работу с ботом\n" +
		"/help - Показать это сообщение помощи\n" +
		"/search <название> - Найти фильм по названию\n" +
		"/random - Случайный фильм\n" +
		"/quote - Случайная цитата из фильма\n" +
		"/history - Показать вашу историю поиска\n" +
		"/stats - Показать вашу статистику поиска\n" +
		"/clearhistory - Очистить историю поиска\n" +
		"Просто напишите название фильма, чтобы найти информацию о нем!"

	msgNotFound = "Я не смог найти информацию об этом фильме. Пожалуйста, попробуйте другой запрос."

	msgError = "Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже."

	msgHistoryEmpty   = "Ваша история поиска пуста."
	msgHistoryHeader  = "Ваши последние 10 поисков:\n"
	msgHistoryCleared = "Ваша история поиска очищена."

	msgStatsFmt = "Вы искали информацию о %d фильмах."

	msgSearchUsage = "Использование: /search <название фильма>"

	msgUnknownCommand = "Неизвестная команда. Отправьте /help для списка команд."
)
