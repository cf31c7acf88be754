package models

type CarModel struct {
	ID            int64  `json:"id"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Year          int    `json:"year"`
	NumberOfSeats int    `json:"number_of_seats"`
	BasedPrice    int    `json:"based_price"`
}

type Option struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type PeriodOption struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

type RegisterMetadata struct {
	Models     []CarModel     `json:"models"`
	Fuels      []Option       `json:"fuels"`
	Motions    []Option       `json:"motions"`
	Periods    []PeriodOption `json:"periods"`
	ParkingLot []Option       `json:"parking_lot"`
}
