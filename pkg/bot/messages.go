package bot

import (
	"strconv"
	"strings"

	"partnerbot/pkg/models"
	"partnerbot/pkg/registration"
)

var messages = map[string]string{
	"welcome":        "👋 Chào mừng đến với MinhHungCar dành cho đối tác.",
	"login_hint":     "Đăng nhập bằng lệnh: <code>/login &lt;số điện thoại&gt; &lt;mật khẩu&gt;</code>",
	"login_ok":       "✅ Đăng nhập thành công.",
	"login_failed":   "❌ Đăng nhập thất bại. Kiểm tra số điện thoại và mật khẩu.",
	"logout_ok":      "👋 Bạn đã đăng xuất.",
	"menu":           "🚗 Menu đối tác:",
	"menu_register":  "➕ Đăng ký xe",
	"menu_cars":      "📋 Xe của tôi",
	"no_cars":        "📭 Bạn chưa có xe nào.",
	"cars_title":     "<b>📋 Xe của bạn</b> (trang %d)",
	"form_title":     "<b>🚗 Đăng ký xe: bước 1/4</b>\nChọn đầy đủ thông tin rồi bấm Gửi.",
	"ask_plate":      "🔢 Nhập biển số xe (ví dụ <code>51A12345</code>):",
	"ask_desc":       "📝 Nhập mô tả xe:",
	"pick_year":      "📅 Chọn năm sản xuất:",
	"pick_brand":     "🏷 Chọn hãng xe:",
	"pick_model":     "🚘 Chọn mẫu xe:",
	"pick_seats":     "💺 Chọn số chỗ:",
	"pick_motion":    "⚙️ Chọn hộp số:",
	"pick_fuel":      "⛽ Chọn nhiên liệu:",
	"pick_parking":   "🅿️ Chọn nơi đỗ xe:",
	"pick_period":    "🗓 Chọn thời hạn cho thuê:",
	"submit":         "📨 Gửi",
	"back":           "⬅️ Quay lại",
	"photos_title":   "<b>📷 Bước 2/4: Ảnh xe</b>\nĐã có %d/%d ảnh.",
	"photos_next":    "Gửi ảnh: <b>%s</b>",
	"docs_title":     "<b>📄 Bước 3/4: Giấy tờ xe</b>\nĐã có %d/%d ảnh.",
	"docs_next":      "Gửi ảnh giấy đăng ký: <b>%s</b>",
	"upload":         "⬆️ Tải lên",
	"repick":         "🔄 Chọn lại",
	"slots_full":     "Đã đủ ảnh. Bấm \"🔄 Chọn lại\" nếu muốn thay ảnh khác.",
	"slots_cleared":  "🔄 Đã xoá các ảnh đã chọn.",
	"price_title":    "<b>💰 Bước 4/4: Giá thuê</b>\nGiá đề xuất tối đa: %s\nGiá đã chọn: <b>%s</b>",
	"price_confirm":  "✅ Xác nhận",
	"success":        "🎉 Đăng ký xe thành công! Xe của bạn đang chờ duyệt.",
	"stale_step":     "Bước này đã kết thúc.",
	"not_in_step":    "Hiện không có bước đăng ký nào cần ảnh.",
	"photo_saved":    "✅ Đã nhận ảnh %s.",
	"car_detail":     "<b>🚗 %s</b>\nMẫu: %s %s (%d)\nTrạng thái: %s\nGiá: %s",
	"parking_note":   "⚠️ Không tải được danh sách bãi đỗ theo số chỗ, đang hiển thị toàn bộ.",
}

var alertMessages = map[registration.AlertKind]string{
	registration.AlertValidation:           "⚠️ Vui lòng điền đầy đủ thông tin.",
	registration.AlertInvalidPlate:         "❌ Biển số không hợp lệ. Ví dụ: 51A12345.",
	registration.AlertDuplicatePlate:       "❌ Biển số xe đã tồn tại.",
	registration.AlertParkingLotFull:       "⚠️ Bãi đỗ đã đầy. Nơi đỗ được chuyển về \"Tại nhà\", vui lòng kiểm tra và gửi lại.",
	registration.AlertUploadProcessing:     "❌ Lỗi xử lý ảnh, vui lòng thử lại.",
	registration.AlertFileTooLarge:         "❌ Ảnh quá lớn, vui lòng chọn ảnh khác.",
	registration.AlertPriceRejected:        "❌ Không thể cập nhật giá, vui lòng thử lại.",
	registration.AlertPriceOutOfRange:      "⚠️ Giá nằm ngoài khoảng cho phép.",
	registration.AlertBasePriceUnavailable: "❌ Chưa có giá đề xuất cho xe này, vui lòng thử lại sau.",
	registration.AlertUnauthorized:         "🔒 Bạn cần đăng nhập trước.",
	registration.AlertInFlight:             "⏳ Đang xử lý, vui lòng đợi.",
	registration.AlertAlreadyDone:          "✅ Bước này đã hoàn tất.",
	registration.AlertGeneric:              "❌ Đã có lỗi xảy ra, vui lòng thử lại.",
}

var statusLabels = map[models.CarStatus]string{
	models.CarStatusPendingImages:      "Chờ ảnh xe",
	models.CarStatusPendingCaveat:      "Chờ giấy tờ",
	models.CarStatusPendingPrice:       "Chờ đặt giá",
	models.CarStatusPendingApproval:    "Chờ duyệt",
	models.CarStatusApproved:           "Đã duyệt",
	models.CarStatusRejected:           "Bị từ chối",
	models.CarStatusActive:             "Đang hoạt động",
	models.CarStatusInactive:           "Ngừng hoạt động",
	models.CarStatusWaitingCarDelivery: "Chờ giao xe",
}

var fieldLabels = map[string]string{
	registration.FieldLicensePlate: "Biển số",
	registration.FieldYear:         "Năm",
	registration.FieldBrand:        "Hãng",
	registration.FieldModel:        "Mẫu",
	registration.FieldSeats:        "Số chỗ",
	registration.FieldMotion:       "Hộp số",
	registration.FieldFuel:         "Nhiên liệu",
	registration.FieldParkingLot:   "Nơi đỗ",
	registration.FieldPeriod:       "Thời hạn",
}

var slotLabels = map[string]string{
	"main":  "ảnh chính",
	"front": "mặt trước",
	"back":  "mặt sau",
	"left":  "bên trái",
	"right": "bên phải",
}

func alertText(kind registration.AlertKind) string {
	if txt, ok := alertMessages[kind]; ok {
		return txt
	}
	return alertMessages[registration.AlertGeneric]
}

func statusLabel(s models.CarStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// formatVND renders 1250000 as "1.250.000 ₫".
func formatVND(amount int) string {
	s := strconv.Itoa(amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + " ₫"
	if neg {
		out = "-" + out
	}
	return out
}
