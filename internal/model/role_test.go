package model

import (
	"encoding/json"
	"testing"
)

func TestParseRole_RoundTrip(t *testing.T) {
	for _, r := range AllRoles() {
		parsed, err := ParseRole(r.String())
		if err != nil {
			t.Fatalf("ParseRole(%q) 不应失败: %v", r.String(), err)
		}
		if parsed != r {
			t.Errorf("ParseRole(%q) = %v，期望 %v", r.String(), parsed, r)
		}
	}
}

func TestParseRole_Invalid(t *testing.T) {
	for _, s := range []string{"", "ADMIN", "ADMIN_", "ADMIN_NONE", "ADMIN_XYZ", "admin_cs", "ROOT"} {
		if _, err := ParseRole(s); err == nil {
			t.Errorf("ParseRole(%q) 应返回错误", s)
		}
	}
}

func TestRole_ZeroValueIsPending(t *testing.T) {
	var r Role
	if !r.IsPending() {
		t.Errorf("零值角色应为 PENDING，实际 %s", r)
	}
	if r.String() != "PENDING" {
		t.Errorf("期望 PENDING，实际 %s", r)
	}
}

func TestRole_AdminDepartment(t *testing.T) {
	dept, ok := AdminRole(DepartmentECE).AdminDepartment()
	if !ok || dept != DepartmentECE {
		t.Errorf("期望 (ECE, true)，实际 (%s, %v)", dept, ok)
	}
	if _, ok := RoleUser.AdminDepartment(); ok {
		t.Error("USER 不应有管理院系")
	}
	if _, ok := RoleSuperAdmin.AdminDepartment(); ok {
		t.Error("SUPER_ADMIN 不应有管理院系")
	}
}

func TestAdminRole_PanicsOnNone(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("AdminRole(NONE) 应 panic")
		}
	}()
	AdminRole(DepartmentNone)
}

func TestRole_JSON(t *testing.T) {
	var payload struct {
		Role Role `json:"role"`
	}
	if err := json.Unmarshal([]byte(`{"role":"ADMIN_MNC"}`), &payload); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	if payload.Role != AdminRole(DepartmentMNC) {
		t.Errorf("期望 ADMIN_MNC，实际 %s", payload.Role)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	if string(out) != `{"role":"ADMIN_MNC"}` {
		t.Errorf("序列化结果不符: %s", out)
	}

	if err := json.Unmarshal([]byte(`{"role":"GOD"}`), &payload); err == nil {
		t.Error("非法角色应反序列化失败")
	}
}

func TestRole_Scan(t *testing.T) {
	var r Role
	if err := r.Scan([]byte("SUPER_ADMIN")); err != nil || r != RoleSuperAdmin {
		t.Errorf("Scan([]byte) 结果不符: %v %v", r, err)
	}
	if err := r.Scan("USER"); err != nil || r != RoleUser {
		t.Errorf("Scan(string) 结果不符: %v %v", r, err)
	}
	if err := r.Scan(42); err == nil {
		t.Error("Scan(int) 应失败")
	}

	v, _ := AdminRole(DepartmentML).Value()
	if v != "ADMIN_ML" {
		t.Errorf("Value 期望 ADMIN_ML，实际 %v", v)
	}
}

func TestDepartment_Valid(t *testing.T) {
	for _, d := range []Department{"NONE", "CS", "ECE", "IT", "MNC", "ML"} {
		if !d.Valid() {
			t.Errorf("%s 应合法", d)
		}
	}
	for _, d := range []Department{"", "cs", "EEE", "ADMIN_CS"} {
		if d.Valid() {
			t.Errorf("%q 不应合法", d)
		}
	}
	if DepartmentNone.Claimable() {
		t.Error("NONE 不可认领")
	}
}
