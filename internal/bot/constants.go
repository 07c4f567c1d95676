package bot

const (
	msgMenu      = "Давайте начнем!"
	msgUseMenu   = "Я не понимаю это сообщение. Пожалуйста, используйте /start чтобы открыть меню."
	msgUnknown   = "Неизвестная команда. Пожалуйста, используйте /start для начала работы."
	msgCancelled = "Хорошо, остановились. Начните заново через /start"
	msgNoFlow    = "Сейчас нечего отменять 🙂"
	msgNotFound  = "Не можем найти заказы... 🤷"
	msgFailure   = "Упс, что-то пошло не так, попробуйте позже 🤔"

	msgHelp = `Доступные команды:
/start - Меню заказов
/order - Новый заказ
/change - Изменить адрес доставки
/orders - Мой последний заказ
/export - Скачать заказы (для администраторов)
/cancel - Отменить текущее действие
/help - Показать эту справку`

	msgStartOrder      = "Начнем заказ! 🤝"
	msgAskDuration     = "<b>На сколько дней заказываете?</b> 🔢"
	msgBadDuration     = "Количество дней должно быть от 1 до 365"
	msgAskMonth        = "<b>Выберите месяц:</b> 📅"
	msgAskDay          = "<b>Выберите дату:</b> ☀️"
	msgAskFirstName    = "<b>Введите ваше имя</b> 🙋"
	msgAskLastName     = "<b>Ваша фамилия</b> 🛂"
	msgAskPhone        = "<b>Ваш телефон в формате +79957772233</b> 📱"
	msgBadPhone        = "Неверный формат телефона. Пожалуйста, введите правильный телефон."
	msgAskAddress      = "<b>Ваш адрес</b> 📍"
	msgAskComment      = "<b>Укажите комментарий к заказу (аллергии, предпочтения и т.д.)</b> 📜\n<i>Если нет комментариев, напишите Нет или поставьте прочерк</i>"
	msgEmptyAnswer     = "Ответ не может быть пустым, попробуйте ещё раз."
	msgOrderAccepted   = "ваш заказ принят!"
	msgLastOrder       = "вот ваш последний заказ!"
	msgAskChange       = "Вы хотите поменять адрес доставки?"
	msgKeepAddress     = "Хорошо! Адрес 📍 останется прежним."
	msgTooLateToChange = "К сожалению, заказ на сегодня уже нельзя изменить: изменения принимаются до %d:00 ⏰"
	msgAskNewAddress   = "Введите новый адрес доставки 📍"
	msgAddressChanged  = "адрес доставки изменён!"

	msgAskPassword    = "🔒 Введите пароль администратора"
	msgAccessDenied   = "⛔ Access denied! ⛔"
	msgAskExportDay   = "<b>Что загрузить?</b>"
	msgSearching      = "✅ Ищем заказы на %s..."
	msgNoOrdersForDay = "🧐 На %s нет заказов..."
	msgReportCaption  = "Заказы на %s"

	msgConfirmDropOrders = "Вы действительно хотите удалить все заказы? 🫣"
	msgConfirmDropAdmins = "Вы действительно хотите удалить всех админов? 🫣"
	msgKeepEverything    = "Уфф! Не будем ничего удалять 🫶"
	msgOrdersDropped     = "Все заказы удалены!"
	msgAdminsDropped     = "Все админы удалены!"
)
