package validators

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateEmergencyRequestValidation(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateEmergencyRequest
		wantField string
	}{
		{
			name: "valid ambulance request",
			req:  CreateEmergencyRequest{Kind: "ambulance", Latitude: 12.97, Longitude: 77.59},
		},
		{
			name: "valid hospital search",
			req:  CreateEmergencyRequest{Kind: "hospital_search", Latitude: 12.97, Longitude: 77.59},
		},
		{
			// Latitude 0 and longitude 0 are valid places, not missing fields.
			name: "zero coordinates",
			req:  CreateEmergencyRequest{Kind: "ambulance", Latitude: 0, Longitude: 0},
		},
		{
			name: "equator with real longitude",
			req:  CreateEmergencyRequest{Kind: "ambulance", Latitude: 0, Longitude: 77.59},
		},
		{
			name:      "unknown kind",
			req:       CreateEmergencyRequest{Kind: "helicopter", Latitude: 12.97, Longitude: 77.59},
			wantField: "Kind",
		},
		{
			name:      "missing kind",
			req:       CreateEmergencyRequest{Latitude: 12.97, Longitude: 77.59},
			wantField: "Kind",
		},
		{
			name:      "latitude out of range",
			req:       CreateEmergencyRequest{Kind: "ambulance", Latitude: 95, Longitude: 77.59},
			wantField: "Latitude",
		},
		{
			name:      "longitude out of range",
			req:       CreateEmergencyRequest{Kind: "ambulance", Latitude: 12.97, Longitude: 200},
			wantField: "Longitude",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStruct(tt.req)
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatalf("expected a validation error on %s", tt.wantField)
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestZeroCoordinatesAcceptedAcrossRequests(t *testing.T) {
	if errs := ValidateStruct(NearbyHospitalsRequest{Latitude: 0, Longitude: 0}); len(errs) != 0 {
		t.Errorf("nearby search at 0,0 rejected: %v", errs)
	}
	if errs := ValidateStruct(UpdateLocationRequest{Latitude: 0, Longitude: 77.59}); len(errs) != 0 {
		t.Errorf("driver location on the equator rejected: %v", errs)
	}

	req := RegisterHospitalRequest{
		Name:               "Equator General",
		RegistrationNumber: "REG-200",
		Password:           "hospital42",
		Latitude:           0,
		Longitude:          0,
	}
	if errs := ValidateStruct(req); len(errs) != 0 {
		t.Errorf("hospital registration at 0,0 rejected: %v", errs)
	}
}

func TestSelectHospitalRequestValidation(t *testing.T) {
	valid := SelectHospitalRequest{HospitalID: primitive.NewObjectID().Hex()}
	if errs := ValidateStruct(valid); len(errs) != 0 {
		t.Errorf("valid hospital id rejected: %v", errs)
	}

	invalid := SelectHospitalRequest{HospitalID: "not-an-id"}
	errs := ValidateStruct(invalid)
	if len(errs) == 0 {
		t.Fatal("malformed hospital id should fail validation")
	}
	if errs[0].Message != "Invalid ID format" {
		t.Errorf("message = %q, want %q", errs[0].Message, "Invalid ID format")
	}
}

func TestAdvanceAssignmentRequestValidation(t *testing.T) {
	for _, status := range []string{"picked_up", "arrived", "completed"} {
		if errs := ValidateStruct(AdvanceAssignmentRequest{Status: status}); len(errs) != 0 {
			t.Errorf("status %q rejected: %v", status, errs)
		}
	}

	// The en-route step carries a hospital choice and has its own endpoint.
	if errs := ValidateStruct(AdvanceAssignmentRequest{Status: "en_route_to_hospital"}); len(errs) == 0 {
		t.Error("en_route_to_hospital should not be accepted here")
	}
	if errs := ValidateStruct(AdvanceAssignmentRequest{Status: ""}); len(errs) == 0 {
		t.Error("missing status should fail validation")
	}
}
