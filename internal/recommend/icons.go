package recommend

import "strings"

const defaultWeatherIcon = "🌤️"

// QWeather condition codes to symbols.
var weatherIcons = map[string]string{
	"100": "☀️",
	"101": "☁️",
	"102": "⛅",
	"103": "⛅",
	"104": "☁️",
	"150": "🌙",
	"300": "🌦️",
	"301": "⛈️",
	"302": "⛈️",
	"303": "⛈️",
	"304": "🌨️",
	"305": "🌧️",
	"306": "🌧️",
	"307": "🌧️",
	"308": "🌧️",
	"309": "🌦️",
	"310": "⛈️",
	"311": "⛈️",
	"312": "⛈️",
	"313": "🌨️",
	"314": "🌧️",
	"315": "🌧️",
	"316": "🌧️",
	"317": "⛈️",
	"318": "⛈️",
	"399": "🌧️",
	"400": "🌨️",
	"401": "🌨️",
	"402": "❄️",
	"403": "❄️",
	"404": "🌨️",
	"405": "🌨️",
	"406": "🌨️",
	"407": "❄️",
	"408": "🌨️",
	"409": "❄️",
	"410": "❄️",
	"499": "❄️",
	"500": "🌫️",
	"501": "🌫️",
	"502": "🌫️",
	"503": "🌪️",
	"504": "🌪️",
	"507": "🌪️",
	"508": "🌪️",
	"509": "🌫️",
	"510": "🌫️",
	"511": "🌫️",
	"512": "🌫️",
	"513": "🌫️",
	"514": "🌫️",
	"515": "🌫️",
}

// WeatherIcon maps a QWeather icon code to a symbol, 🌤️ when unknown.
func WeatherIcon(code string) string {
	if icon, ok := weatherIcons[strings.TrimSpace(code)]; ok {
		return icon
	}
	return defaultWeatherIcon
}
