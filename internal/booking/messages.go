package booking

const (
	createdTitle   = "Yeni Randevu Talebi"
	createdMessage = "Yeni bir randevu talebi aldınız. Onaylamak için randevular bölümüne gidin."

	approvedTitle   = "Randevu Onaylandı"
	approvedMessage = "Randevunuz onaylandı! Takvim sayfanızdan detayları görebilirsiniz."

	rejectedTitle          = "Randevu Reddedildi"
	defaultRejectedMessage = "Randevunuz red edildi. Lütfen başka bir saat seçiniz."
)
