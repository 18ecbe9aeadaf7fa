// Package config загружает настройки фермы из .env и окружения.
//
// Переменные с пустым значением считаются не заданными. Диапазоны
// задаются как "[min, max]" или "min,max" в секундах, списки как
// JSON-массив или значения через запятую.
//
// Обязательны только API_ID и API_HASH.
package config
