package bluedart

import (
	"bytes"
	"encoding/xml"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWayBillRequestEscapesXML(t *testing.T) {
	client := NewSOAPAPIClient(SOAPAPIClientConfig{
		LicenceKey: "test-key",
		LoginID:    "BOM00001",
	})

	req := &WayBillRequest{
		Shipper: Shipper{
			CustomerName:     "Singh & Sons <Pvt>",
			CustomerAddress1: "12 M.G. Road & Co. Lane",
			CustomerCode:     "123456",
			OriginArea:       "BOM",
			Sender:           "Singh & Sons <Pvt>",
		},
		Consignee: Consignee{
			ConsigneeName:     "O'Brien \"Imports\"",
			ConsigneeAddress1: "Plot <7>, Sector & 9",
		},
		Services: Services{
			ProductCode:       "A",
			ProductType:       "Dutiables",
			PieceCount:        1,
			ActualWeight:      2.5,
			CreditReferenceNo: "DN-00042",
			PickupDate:        "2026-08-30",
			PickupTime:        "1400",
		},
	}

	body, err := client.buildWayBillRequest(req)
	require.NoError(t, err)

	rendered := string(body)
	assert.Contains(t, rendered, "Singh &amp; Sons &lt;Pvt&gt;")
	assert.Contains(t, rendered, "12 M.G. Road &amp; Co. Lane")
	assert.Contains(t, rendered, "Plot &lt;7&gt;, Sector &amp; 9")
	assert.NotContains(t, rendered, "Singh & Sons <Pvt>")

	// The envelope must stay well-formed XML after interpolation.
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
}
