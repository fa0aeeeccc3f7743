package dataset

// FlightDelayColumns are the pre-departure features kept from the on-time
// performance extracts, followed by the outcome flags and the ArrDel15 label.
var FlightDelayColumns = []string{
	"Year", "Month", "DayofMonth", "DayOfWeek", "FlightDate",
	"Reporting_Airline", "DOT_ID_Reporting_Airline", "Flight_Number_Reporting_Airline",
	"OriginAirportID", "OriginCityMarketID", "OriginState", "Origin",
	"DestAirportID", "DestCityMarketID", "DestState", "Dest",
	"CRSDepTime", "DepTimeBlk", "CRSArrTime", "ArrTimeBlk",
	"Distance", "DistanceGroup", "CRSElapsedTime",
	"Cancelled", "Diverted",
	"ArrDel15",
}

// FlightDelay returns the projection used to build the arrival-delay
// training set: completed flights only, with a defined label.
func FlightDelay() Projection {
	cols := make([]string, len(FlightDelayColumns))
	copy(cols, FlightDelayColumns)
	return Projection{
		Columns: cols,
		Filter: []Predicate{
			{Column: "Cancelled", Op: OpEq, Value: "0"},
			{Column: "Diverted", Op: OpEq, Value: "0"},
			{Column: "ArrDel15", Op: OpNotNull},
		},
	}
}
