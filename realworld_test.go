package translator

import (
	"strconv"
	"testing"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Station-Manager/translator/converters"
)

// Logbook shapes modelled on a QSO record: an application type made of
// embedded groups, and a flat database row with nullable columns.
type QsoDetails struct {
	Band    string
	Freq    string
	Mode    string
	QsoDate string
	RstRcvd string
	RstSent string
	TimeOn  string
	TimeOff string
}

type ContactedStation struct {
	Call    string
	Country string
	Name    string
}

type LoggingStation struct {
	MyAntenna       string
	MyCity          string
	StationCallsign string
}

type Qso struct {
	ID int64
	QsoDetails
	ContactedStation
	LoggingStation
	Comments []string
}

type QsoRow struct {
	ID              int64
	Band            string
	Freq            float64
	Mode            string
	QsoDate         time.Time
	RstRcvd         string
	RstSent         string
	TimeOn          string
	TimeOff         string
	Call            string
	Country         null.String
	Name            null.String
	StationCallsign string
	AdditionalData  null.JSON
}

type QsoSummary struct {
	Call      string
	Band      string
	Operator  string `translate:"source=StationCallsign"`
	Antenna   string `translate:"source=json:AdditionalData.my_antenna;optional"`
	City      string `translate:"source=json:AdditionalData.my_city;optional"`
	Signal    string `translate:"source=expr:RstSent + '/' + RstRcvd"`
	LoggedFor string `translate:"source=var:logbook"`
}

type RealworldSuite struct {
	suite.Suite
	cfg *Configuration
}

func TestRealworld(t *testing.T) {
	suite.Run(t, new(RealworldSuite))
}

func (suite *RealworldSuite) SetupSuite() {
	cfg, err := NewBuilder().
		AddConverterFor(QsoRow{}, "Freq", typeToModelFreqConverter).
		Describe(QsoRow{},
			FieldDescriptor{Name: "AdditionalData", Source: "expr:{'my_antenna': MyAntenna, 'my_city': MyCity}"},
		).
		Build()
	require.NoError(suite.T(), err)
	suite.cfg = cfg
}

func (suite *RealworldSuite) qso() *Qso {
	return &Qso{
		ID: 1,
		QsoDetails: QsoDetails{
			Band:    "20m",
			Freq:    "14.320",
			Mode:    "SSB",
			QsoDate: "20251107",
			RstRcvd: "59",
			RstSent: "57",
			TimeOn:  "1200",
			TimeOff: "1205",
		},
		ContactedStation: ContactedStation{
			Call:    "M0CMC",
			Country: "England",
		},
		LoggingStation: LoggingStation{
			MyAntenna:       "Hex Beam",
			MyCity:          "Mzuzu",
			StationCallsign: "7Q5MLV",
		},
	}
}

func (suite *RealworldSuite) TestTypeToRow() {
	qso := suite.qso()

	row, err := TranslateTo[QsoRow](suite.cfg, qso)
	require.NoError(suite.T(), err)

	modelDate, err := time.Parse("20060102", qso.QsoDate)
	require.NoError(suite.T(), err)

	require.Equal(suite.T(), qso.Band, row.Band)
	require.Equal(suite.T(), 14.320, row.Freq)
	require.Equal(suite.T(), qso.Mode, row.Mode)
	require.Equal(suite.T(), modelDate, row.QsoDate)
	require.Equal(suite.T(), qso.RstRcvd, row.RstRcvd)
	require.Equal(suite.T(), qso.RstSent, row.RstSent)
	require.Equal(suite.T(), qso.TimeOn, row.TimeOn)
	require.Equal(suite.T(), qso.TimeOff, row.TimeOff)
	require.Equal(suite.T(), null.StringFrom("England"), row.Country)
	require.False(suite.T(), row.Name.Valid)
	require.True(suite.T(), row.AdditionalData.Valid)
	require.JSONEq(suite.T(), `{"my_antenna":"Hex Beam","my_city":"Mzuzu"}`, string(row.AdditionalData.JSON))
}

func (suite *RealworldSuite) TestRowToType() {
	row, err := TranslateTo[QsoRow](suite.cfg, suite.qso())
	require.NoError(suite.T(), err)

	type QsoBack struct {
		ID int64
		QsoDetails
		ContactedStation
		LoggingStation
		MyAntenna string `translate:"source=json:AdditionalData.my_antenna"`
	}

	back, err := TranslateTo[QsoBack](NewWithOptions(WithSourcePropertyRequired(false)), row)
	require.NoError(suite.T(), err)

	require.Equal(suite.T(), "M0CMC", back.Call)
	require.Equal(suite.T(), "14.32", back.Freq)
	require.Equal(suite.T(), "England", back.Country)
	require.Equal(suite.T(), "Hex Beam", back.MyAntenna)
	require.Empty(suite.T(), back.Name)
	require.Empty(suite.T(), back.LoggingStation.MyAntenna)
}

func (suite *RealworldSuite) TestSummaries() {
	rows := make([]*QsoRow, 0, 3)
	for i, call := range []string{"M0CMC", "G4ABC", "ZS6XYZ"} {
		q := suite.qso()
		q.ID = int64(i)
		q.Call = call
		row, err := TranslateTo[QsoRow](suite.cfg, q)
		require.NoError(suite.T(), err)
		rows = append(rows, row)
	}

	s := NewSessionWithVariables(suite.cfg, map[string]any{"logbook": "contest"})
	summaries, err := EachSlice[QsoSummary](s, rows, "")
	require.NoError(suite.T(), err)

	require.Len(suite.T(), summaries, 3)
	require.Equal(suite.T(), QsoSummary{
		Call:      "G4ABC",
		Band:      "20m",
		Operator:  "7Q5MLV",
		Antenna:   "Hex Beam",
		City:      "Mzuzu",
		Signal:    "57/59",
		LoggedFor: "contest",
	}, summaries[1])
}

func (suite *RealworldSuite) TestBadFrequency() {
	qso := suite.qso()
	qso.Freq = "fourteen"

	_, err := TranslateTo[QsoRow](suite.cfg, qso)
	require.Error(suite.T(), err)
	require.ErrorContains(suite.T(), err, "translating field Freq")
}

func (suite *RealworldSuite) TestRowsIntoDescribedConfiguration() {
	_, err := NewBuilder().Describe(QsoRow{}, FieldDescriptor{Name: "Missing"}).Build()
	require.Error(suite.T(), err)
}

// typeToModelFreqConverter parses a frequency in MHz.
func typeToModelFreqConverter(src any) (any, error) {
	const op errors.Op = "translator.typeToModelFreqConverter"
	srcVal, err := converters.CheckString(op, src)
	if err != nil {
		return 0, errors.New(op).Err(err)
	}
	freq, err := strconv.ParseFloat(srcVal, 64)
	if err != nil {
		return 0, errors.New(op).Err(err)
	}
	return freq, nil
}
