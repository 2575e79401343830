package i18n

type Messages struct {
	AppShort string
	AppLong  string

	FlagMaxKeys string
	FlagWorkers string
	FlagNoBench string
	FlagDelete  string

	PatternRequired string

	PerfCached       string
	PerfPlatform     string
	PerfRunning      string
	PerfRun          string
	PerfDone         string
	PerfUnavailable  string
	StatsHeader      string
	StatsPrefixLen   string
	StatsSpeed       string
	StatsAverage     string
	Stats50          string
	Stats90          string
	StatsNote        string
	SearchWorkers    string
	SearchBehavior   string
	Progress         string
	ProgressLong     string
	Found            string
	FoundSaveFailed  string
	Success          string
	SavedTo          string
	DeleteReminder   string
	NoneFound        string
	DeleteNothing    string
	DeleteDone       string
	DeleteFailed     string
	Interrupted      string
	BehaviorFindN    string
	BehaviorContinue string
}

func Get(lang string) Messages {
	switch lang {
	case "en":
		return Messages{
			AppShort:         "Search for Ed25519 keys whose public key starts with a hex pattern",
			AppLong:          "Searches for Ed25519 keys with a given hex prefix in the public key,\nusing every worker core. Found keys are appended to the keys file.",
			FlagMaxKeys:      "stop after this many keys (0 = search until interrupted)",
			FlagWorkers:      "number of search workers (0 = from config, default CPUs-1)",
			FlagNoBench:      "skip the performance benchmark and estimate",
			FlagDelete:       "securely delete the keys file and exit",
			PatternRequired:  "pattern is required unless --delete is given",
			PerfCached:       "Using cached performance data",
			PerfPlatform:     "Platform",
			PerfRunning:      "Running performance benchmark on %d cores...\n",
			PerfRun:          "   run %d: %.0f keys/sec/core, %d keys in %s\n",
			PerfDone:         "Performance benchmark completed",
			PerfUnavailable:  "Performance estimate unavailable",
			StatsHeader:      "Search statistics",
			StatsPrefixLen:   "Prefix length (hex chars)",
			StatsSpeed:       "Expected speed (keys/sec)",
			StatsAverage:     "Estimated time (average)",
			Stats50:          "50% chance within",
			Stats90:          "90% chance within",
			StatsNote:        "Note: this is probabilistic, you might get lucky or unlucky.",
			SearchWorkers:    "Using %d workers\n",
			SearchBehavior:   "Search mode: %s\n",
			Progress:         "\r\x1b[KAttempts: %s | Matches: %d | Keys/sec: %s",
			ProgressLong:     "\r\x1b[KAttempts: %s | Matches: %d | Keys/sec: %s | Running: %s",
			Found:            "\nFound key #%d\n   Public Key: %s\n",
			FoundSaveFailed:  "error saving key (it was found anyway): %v\n",
			Success:          "\nFound %d matching key(s)\n",
			SavedTo:          "Keys have been saved to: %s\n",
			DeleteReminder:   "Remember to securely delete the file when done: meshkeygen --delete\n",
			NoneFound:        "\nNo matching keys found\n",
			DeleteNothing:    "Nothing to delete: %s does not exist\n",
			DeleteDone:       "Securely deleted %s (%s)\n",
			DeleteFailed:     "secure delete failed",
			Interrupted:      "\nInterrupted, stopping workers...\n",
			BehaviorFindN:    "find %d key(s)",
			BehaviorContinue: "continuous",
		}
	default: // "ru"
		return Messages{
			AppShort:         "Поиск ключей Ed25519, публичный ключ которых начинается с hex-паттерна",
			AppLong:          "Ищет ключи Ed25519 с заданным hex-префиксом публичного ключа\nна всех рабочих ядрах. Найденные ключи дописываются в файл ключей.",
			FlagMaxKeys:      "остановиться после стольких ключей (0 = искать до прерывания)",
			FlagWorkers:      "число воркеров (0 = из конфига, по умолчанию CPU-1)",
			FlagNoBench:      "пропустить бенчмарк и оценку времени",
			FlagDelete:       "надёжно удалить файл ключей и выйти",
			PatternRequired:  "паттерн обязателен, если не указан --delete",
			PerfCached:       "Используются кешированные данные производительности",
			PerfPlatform:     "Платформа",
			PerfRunning:      "Бенчмарк производительности на %d ядрах...\n",
			PerfRun:          "   прогон %d: %.0f ключей/сек/ядро, %d ключей за %s\n",
			PerfDone:         "Бенчмарк завершён",
			PerfUnavailable:  "Оценка производительности недоступна",
			StatsHeader:      "Статистика поиска",
			StatsPrefixLen:   "Длина префикса (hex-символов)",
			StatsSpeed:       "Ожидаемая скорость (ключей/сек)",
			StatsAverage:     "Оценка времени (в среднем)",
			Stats50:          "С вероятностью 50% за",
			Stats90:          "С вероятностью 90% за",
			StatsNote:        "Оценка вероятностная: может повезти, а может и нет.",
			SearchWorkers:    "Воркеров: %d\n",
			SearchBehavior:   "Режим поиска: %s\n",
			Progress:         "\r\x1b[KПопыток: %s | Совпадений: %d | Ключей/сек: %s",
			ProgressLong:     "\r\x1b[KПопыток: %s | Совпадений: %d | Ключей/сек: %s | В работе: %s",
			Found:            "\nНайден ключ #%d\n   Public Key: %s\n",
			FoundSaveFailed:  "ошибка сохранения ключа (ключ всё равно найден): %v\n",
			Success:          "\nНайдено подходящих ключей: %d\n",
			SavedTo:          "Ключи сохранены в: %s\n",
			DeleteReminder:   "Не забудьте надёжно удалить файл: meshkeygen --delete\n",
			NoneFound:        "\nПодходящих ключей не найдено\n",
			DeleteNothing:    "Нечего удалять: %s не существует\n",
			DeleteDone:       "Файл %s надёжно удалён (%s)\n",
			DeleteFailed:     "надёжное удаление не удалось",
			Interrupted:      "\nПрервано, останавливаем воркеры...\n",
			BehaviorFindN:    "найти ключей: %d",
			BehaviorContinue: "непрерывный",
		}
	}
}
